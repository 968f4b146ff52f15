package operators

// Schema types and formats as they appear in field catalogs.
const (
	TypeString  = "string"
	TypeBool    = "bool"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeArray   = "array"

	FormatDateTime        = "date-time"
	FormatDate            = "date"
	FormatImage           = "image"
	FormatVersion         = "version"
	FormatIP              = "ip"
	FormatIPPreferred     = "ip_preferred"
	FormatSubnet          = "subnet"
	FormatDiscrete        = "discrete"
	FormatLogo            = "logo"
	FormatTable           = "table"
	FormatTag             = "tag"
	FormatTagExpirable    = "expirable-tag"
	FormatConnectionLabel = "connection_label"
	FormatOSDistribution  = "os-distribution"
	FormatDynamicField    = "dynamic_field"
	FormatSavedQuery      = "sq"
	FormatDataScope       = "data_scope"
)

const (
	tmplEquals      = `({field} == "{value}")`
	tmplIn          = `({field} in [{value}])`
	tmplExists      = `(({field} == ({"$exists":true,"$ne":""})))`
	tmplExistsArray = `(({field} == ({"$exists":true,"$ne":[]})))`
)

// Operators, one per (name, template, encoder) combination.
var (
	Contains = OperatorSpec{Name: "contains", CompOp: "contains",
		Template: `({field} == regex("{value}", "i"))`, Encoder: EncodeEscapedRegex}
	StartsWith = OperatorSpec{Name: "startswith", CompOp: "starts",
		Template: `({field} == regex("^{value}", "i"))`, Encoder: EncodeEscapedRegex}
	EndsWith = OperatorSpec{Name: "endswith", CompOp: "ends",
		Template: `({field} == regex("{value}$", "i"))`, Encoder: EncodeEscapedRegex}
	Regex = OperatorSpec{Name: "regex", CompOp: "regex",
		Template: `({field} == regex("{value}", "i"))`, Encoder: EncodeStr}

	CountEquals = OperatorSpec{Name: "count_equals", CompOp: "count_equals",
		Template: `({field} == size({value}))`, Encoder: EncodeInt}
	CountBelow = OperatorSpec{Name: "count_below", CompOp: "count_below",
		Template: `({field} < size({value}))`, Encoder: EncodeInt}
	CountAbove = OperatorSpec{Name: "count_above", CompOp: "count_above",
		Template: `({field} > size({value}))`, Encoder: EncodeInt}

	EqualsStr     = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeStr}
	EqualsTag     = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeTags}
	EqualsAdapter = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeAdapters}
	EqualsCnx     = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeCnxLabel}
	EqualsIP      = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeIP}
	EqualsSubnet  = OperatorSpec{Name: "equals", CompOp: "equals", Template: tmplEquals, Encoder: EncodeSubnet}
	EqualsInt     = OperatorSpec{Name: "equals", CompOp: "equals", Template: `({field} == {value})`, Encoder: EncodeInt}

	EqualsSavedQuery = OperatorSpec{Name: "equals", CompOp: "",
		Template: `({{QueryID={value}}})`, Encoder: EncodeSavedQuery, FieldOverride: "saved_query"}
	EqualsDataScope = OperatorSpec{Name: "equals", CompOp: "",
		Template: `({{AssetScopeID={value}}})`, Encoder: EncodeDataScope, FieldOverride: "data_scope"}

	Exists      = OperatorSpec{Name: "exists", CompOp: "exists", Template: tmplExists, Encoder: EncodeNone}
	ExistsArray = OperatorSpec{Name: "exists", CompOp: "exists", Template: tmplExistsArray, Encoder: EncodeNone}
	ExistsArrayObject = OperatorSpec{Name: "exists", CompOp: "exists",
		Template: `(({field} == ({"$exists":true,"$ne":[]})) and {field} != [])`, Encoder: EncodeNone}

	InSubnet = OperatorSpec{Name: "in_subnet", CompOp: "subnet",
		Template: `({field}_raw == match({"$gte": {start}, "$lte": {end}}))`, Encoder: EncodeInSubnet}
	NotInSubnet = OperatorSpec{Name: "not_in_subnet", CompOp: "notInSubnet",
		Template: `(({field}_raw == match({"$gte": 0, "$lte": {start}}) or {field}_raw == match({"$gte": {end}, "$lte": 4294967295})))`,
		Encoder:  EncodeInSubnet}
	IsIPv4 = OperatorSpec{Name: "is_ipv4", CompOp: "isIPv4", Template: `({field} == regex("\."))`, Encoder: EncodeNone}
	IsIPv6 = OperatorSpec{Name: "is_ipv6", CompOp: "isIPv6", Template: `({field} == regex(":"))`, Encoder: EncodeNone}

	InStr     = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVStr}
	InTag     = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVTags}
	InAdapter = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVAdapters}
	InCnx     = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVCnxLabel}
	InIP      = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVIP}
	InSubnets = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVSubnet}
	InInt     = OperatorSpec{Name: "in", CompOp: "IN", Template: tmplIn, Encoder: EncodeCSVInt}

	IsTrue  = OperatorSpec{Name: "true", CompOp: "true", Template: `({field} == true)`, Encoder: EncodeNone}
	IsFalse = OperatorSpec{Name: "false", CompOp: "false", Template: `({field} == false)`, Encoder: EncodeNone}

	LastHours = OperatorSpec{Name: "last_hours", CompOp: "hours",
		Template: `({field} >= date("NOW - {value}h"))`, Encoder: EncodeInt}
	LastDays = OperatorSpec{Name: "last_days", CompOp: "days",
		Template: `({field} >= date("NOW - {value}d"))`, Encoder: EncodeInt}
	NextHours = OperatorSpec{Name: "next_hours", CompOp: "next_hours",
		Template: `({field} >= date("NOW + {value}h"))`, Encoder: EncodeInt}
	NextDays = OperatorSpec{Name: "next_days", CompOp: "next_days",
		Template: `({field} >= date("NOW + {value}d"))`, Encoder: EncodeInt}

	LessThanDate = OperatorSpec{Name: "less_than", CompOp: "<", Template: `({field} < date("{value}"))`, Encoder: EncodeDate}
	MoreThanDate = OperatorSpec{Name: "more_than", CompOp: ">", Template: `({field} > date("{value}"))`, Encoder: EncodeDate}
	LessThanInt  = OperatorSpec{Name: "less_than", CompOp: "<", Template: `({field} < {value})`, Encoder: EncodeInt}
	MoreThanInt  = OperatorSpec{Name: "more_than", CompOp: ">", Template: `({field} > {value})`, Encoder: EncodeInt}

	EarlierThan = OperatorSpec{Name: "earlier_than", CompOp: "earlier than",
		Template: `({field}_raw < '{value}')`, Encoder: EncodeRawVersion}
	LaterThan = OperatorSpec{Name: "later_than", CompOp: "later than",
		Template: `({field}_raw > '{value}')`, Encoder: EncodeRawVersion}
)

// without returns ops minus any operator equal to one of drop.
func without(ops []OperatorSpec, drop ...OperatorSpec) []OperatorSpec {
	out := make([]OperatorSpec, 0, len(ops))
next:
	for _, op := range ops {
		for _, d := range drop {
			if op == d {
				continue next
			}
		}
		out = append(out, op)
	}
	return out
}

func ops(lists ...[]OperatorSpec) []OperatorSpec {
	var out []OperatorSpec
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// DefaultProfiles returns the built-in TypeProfiles in lookup order.
func DefaultProfiles() []Profile {
	str := []OperatorSpec{Exists, Regex, Contains, EqualsStr, StartsWith, EndsWith, InStr}
	tag := []OperatorSpec{Exists, Regex, Contains, EqualsTag, StartsWith, EndsWith, InTag}
	ip := []OperatorSpec{Exists, Regex, Contains, InIP, EqualsIP, InSubnet, NotInSubnet, IsIPv4, IsIPv6}
	date := []OperatorSpec{Exists, LessThanDate, MoreThanDate, LastHours, NextHours, LastDays, NextDays}
	version := []OperatorSpec{Exists, Regex, Contains, InStr, EqualsStr, EarlierThan, LaterThan}
	subnet := []OperatorSpec{Exists, Regex, Contains, InSubnets, EqualsSubnet}
	number := []OperatorSpec{Exists, EqualsInt, InInt, LessThanInt, MoreThanInt}
	object := []OperatorSpec{ExistsArrayObject, CountEquals}
	arrayOf := func(base []OperatorSpec) []OperatorSpec {
		return ops([]OperatorSpec{ExistsArray}, without(base, Exists))
	}

	return []Profile{
		{Name: "string_sq", Key: Key{Type: TypeString, Format: FormatSavedQuery},
			Operators: []OperatorSpec{EqualsSavedQuery}},
		{Name: "string_data_scope", Key: Key{Type: TypeString, Format: FormatDataScope},
			Operators: []OperatorSpec{EqualsDataScope}},
		{Name: "string_cnx_label", Key: Key{Type: TypeString, Format: FormatConnectionLabel},
			Operators: []OperatorSpec{Exists, EqualsCnx, InCnx}},
		{Name: "string", Key: Key{Type: TypeString}, Operators: str},
		{Name: "string_os_distribution", Key: Key{Type: TypeString, Format: FormatOSDistribution}, Operators: str},
		{Name: "string_tag_expirable", Key: Key{Type: TypeString, Format: FormatTagExpirable}, Operators: tag},
		{Name: "string_tag", Key: Key{Type: TypeString, Format: FormatTag}, Operators: tag},
		{Name: "string_ip", Key: Key{Type: TypeString, Format: FormatIP}, Operators: ip},
		{Name: "string_datetime", Key: Key{Type: TypeString, Format: FormatDateTime}, Operators: date},
		{Name: "string_date", Key: Key{Type: TypeString, Format: FormatDate}, Operators: date},
		{Name: "string_image", Key: Key{Type: TypeString, Format: FormatImage}, Operators: []OperatorSpec{Exists}},
		{Name: "string_version", Key: Key{Type: TypeString, Format: FormatVersion}, Operators: version},
		{Name: "string_subnet", Key: Key{Type: TypeString, Format: FormatSubnet}, Operators: subnet},
		{Name: "boolean", Key: Key{Type: TypeBool}, Operators: []OperatorSpec{IsTrue, IsFalse}},
		{Name: "integer", Key: Key{Type: TypeInteger}, Operators: number},
		{Name: "number", Key: Key{Type: TypeNumber}, Operators: number},
		{Name: "array_object", Key: Key{Type: TypeArray, ItemType: TypeArray}, Operators: object},
		{Name: "array_table_object", Key: Key{Type: TypeArray, Format: FormatTable, ItemType: TypeArray}, Operators: object},
		{Name: "array_integer", Key: Key{Type: TypeArray, ItemType: TypeInteger}, Operators: arrayOf(number)},
		{Name: "array_number", Key: Key{Type: TypeArray, ItemType: TypeNumber}, Operators: arrayOf(number)},
		{Name: "array_string", Key: Key{Type: TypeArray, ItemType: TypeString}, Operators: arrayOf(str)},
		{Name: "array_string_tag", Key: Key{Type: TypeArray, ItemType: TypeString, ItemFormat: FormatTag},
			Operators: []OperatorSpec{ExistsArray, CountEquals, Regex, Contains, EqualsTag, StartsWith, EndsWith, InTag}},
		{Name: "array_string_version",
			Key:       Key{Type: TypeArray, Format: FormatVersion, ItemType: TypeString, ItemFormat: FormatVersion},
			Operators: arrayOf(version)},
		{Name: "array_string_datetime",
			Key:       Key{Type: TypeArray, Format: FormatDateTime, ItemType: TypeString, ItemFormat: FormatDateTime},
			Operators: arrayOf(date)},
		{Name: "array_string_subnet",
			Key:       Key{Type: TypeArray, Format: FormatSubnet, ItemType: TypeString, ItemFormat: FormatSubnet},
			Operators: arrayOf(subnet)},
		{Name: "array_discrete_string_logo",
			Key: Key{Type: TypeArray, Format: FormatDiscrete, ItemType: TypeString, ItemFormat: FormatLogo},
			Operators: []OperatorSpec{ExistsArray, EqualsAdapter, CountEquals, CountBelow, CountAbove, InAdapter}},
		{Name: "array_string_ip",
			Key:       Key{Type: TypeArray, Format: FormatIP, ItemType: TypeString, ItemFormat: FormatIP},
			Operators: arrayOf(ip)},
		{Name: "array_string_ip_preferred",
			Key:       Key{Type: TypeArray, Format: FormatIPPreferred, ItemType: TypeString, ItemFormat: FormatIPPreferred},
			Operators: arrayOf(ip)},
	}
}
