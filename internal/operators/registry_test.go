package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/testutil"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

func TestProfileFor(t *testing.T) {
	cat := testutil.Catalog(t)
	reg := Default()

	testCases := []struct {
		field   string
		profile string
	}{
		{"hostname", "string"},
		{"notes", "string"},
		{"os.distribution", "string_os_distribution"},
		{"last_seen", "string_datetime"},
		{"last_boot", "string_date"},
		{"avatar", "string_image"},
		{"os.version", "string_version"},
		{"subnet", "string_subnet"},
		{"public_ip", "string_ip"},
		{"is_managed", "boolean"},
		{"adapter_count", "integer"},
		{"cvss", "number"},
		{"saved_query", "string_sq"},
		{"data_scope", "string_data_scope"},
		{"connection_label", "string_cnx_label"},
		{"expirable_tags.name", "string_tag_expirable"},
		{"adapters", "array_discrete_string_logo"},
		{"labels", "array_string_tag"},
		{"last_used_users", "array_string"},
		{"usb_classes", "array_string"},
		{"network_interfaces.ips", "array_string_ip"},
		{"network_interfaces.subnets", "array_string_subnet"},
		{"open_ports", "array_integer"},
		{"installed_software", "array_object"},
		{"cpus", "array_table_object"},
		{"aws:aws_device_type", "string"},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			f, err := cat.Resolve(tc.field)
			require.NoError(t, err)

			p, err := reg.ProfileFor(f)
			require.NoError(t, err)
			assert.Equal(t, tc.profile, p.Name)
		})
	}
}

func TestProfileFor_Unmapped(t *testing.T) {
	cat := testutil.Catalog(t)
	f, err := cat.Resolve("blob")
	require.NoError(t, err)

	_, err = Default().ProfileFor(f)
	require.Error(t, err)

	we, ok := wizerr.As(err)
	require.True(t, ok)
	assert.Equal(t, wizerr.CodeUnmappedFieldType, we.Code)
	assert.Len(t, we.Hints, len(DefaultProfiles()))
	assert.Contains(t, we.Hints, "string_ip (string/ip/-/-)")
	assert.Contains(t, we.Message, `"blob"`)
}

func TestResolve(t *testing.T) {
	cat := testutil.Catalog(t)
	reg := Default()

	testCases := []struct {
		name     string
		field    string
		op       string
		want     OperatorSpec
		wantCode wizerr.Code
	}{
		{name: "exact", field: "hostname", op: "contains", want: Contains},
		{name: "case and space", field: "hostname", op: "  ConTains ", want: Contains},
		{name: "equals on tags", field: "labels", op: "equals", want: EqualsTag},
		{name: "equals on adapters", field: "adapters", op: "equals", want: EqualsAdapter},
		{name: "in on integers", field: "port_count", op: "in", want: InInt},
		{name: "more_than on integers", field: "port_count", op: "more_than", want: MoreThanInt},
		{name: "more_than on dates", field: "last_seen", op: "more_than", want: MoreThanDate},
		{name: "exists on arrays", field: "open_ports", op: "exists", want: ExistsArray},
		{name: "exists on objects", field: "cpus", op: "exists", want: ExistsArrayObject},
		{name: "saved query", field: "saved_query", op: "equals", want: EqualsSavedQuery},
		{name: "not in profile", field: "is_managed", op: "equals", wantCode: wizerr.CodeInvalidOperator},
		{name: "unknown", field: "hostname", op: "frobnicate", wantCode: wizerr.CodeInvalidOperator},
		{name: "unmapped field", field: "blob", op: "exists", wantCode: wizerr.CodeUnmappedFieldType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := cat.Resolve(tc.field)
			require.NoError(t, err)

			got, err := reg.Resolve(f, tc.op)
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.True(t, wizerr.Is(err, tc.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_InvalidOperatorListsStringProfile(t *testing.T) {
	cat := testutil.Catalog(t)
	f, err := cat.Resolve("hostname")
	require.NoError(t, err)

	_, err = Default().Resolve(f, "frobnicate")
	require.Error(t, err)

	we, ok := wizerr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"exists", "regex", "contains", "equals", "startswith", "endswith", "in"}, we.Hints)
	assert.Contains(t, err.Error(), `invalid operator "frobnicate" for field "hostname" with type "string"`)
	for _, name := range we.Hints {
		assert.Contains(t, err.Error(), "  - "+name)
	}
}

func TestResolve_SubFieldNamesParent(t *testing.T) {
	cat := testutil.Catalog(t)
	parent, err := cat.ResolveComplex("installed_software")
	require.NoError(t, err)
	sub, err := cat.ResolveSub(parent, "version")
	require.NoError(t, err)

	op, err := Default().Resolve(sub, "earlier_than")
	require.NoError(t, err)
	assert.Equal(t, EarlierThan, op)

	_, err = Default().Resolve(sub, "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version (sub field of installed_software)")
}

func TestDefaultProfiles_ArrayVariants(t *testing.T) {
	reg := Default()

	testCases := []struct {
		profile string
		names   []string
	}{
		{"array_string", []string{"exists", "regex", "contains", "equals", "startswith", "endswith", "in"}},
		{"array_integer", []string{"exists", "equals", "in", "less_than", "more_than"}},
		{"array_string_ip", []string{"exists", "regex", "contains", "in", "equals", "in_subnet", "not_in_subnet", "is_ipv4", "is_ipv6"}},
		{"array_string_datetime", []string{"exists", "less_than", "more_than", "last_hours", "next_hours", "last_days", "next_days"}},
		{"array_discrete_string_logo", []string{"exists", "equals", "count_equals", "count_below", "count_above", "in"}},
		{"array_string_tag", []string{"exists", "count_equals", "regex", "contains", "equals", "startswith", "endswith", "in"}},
	}

	for _, tc := range testCases {
		t.Run(tc.profile, func(t *testing.T) {
			p, ok := reg.Profile(tc.profile)
			require.True(t, ok)
			assert.Equal(t, tc.names, p.Names())
			assert.Equal(t, ExistsArray, p.Operators[0])
		})
	}
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Len(t, Default().Profiles(), 28)
}

func TestNewRegistry_Rejects(t *testing.T) {
	testCases := []struct {
		name     string
		profiles []Profile
	}{
		{
			name: "duplicate key",
			profiles: []Profile{
				{Name: "a", Key: Key{Type: "string"}, Operators: []OperatorSpec{Exists}},
				{Name: "b", Key: Key{Type: "string"}, Operators: []OperatorSpec{Exists}},
			},
		},
		{
			name: "duplicate name",
			profiles: []Profile{
				{Name: "a", Key: Key{Type: "string"}, Operators: []OperatorSpec{Exists}},
				{Name: "a", Key: Key{Type: "bool"}, Operators: []OperatorSpec{IsTrue}},
			},
		},
		{
			name:     "no operators",
			profiles: []Profile{{Name: "a", Key: Key{Type: "string"}}},
		},
		{
			name: "unknown encoder",
			profiles: []Profile{
				{Name: "a", Key: Key{Type: "string"}, Operators: []OperatorSpec{{Name: "x", Encoder: EncoderKindCount}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.profiles...)
			assert.Error(t, err)
		})
	}
}

func TestKeyFor_DynamicField(t *testing.T) {
	f := catalog.FieldSchema{Name: "x", Type: "array", Format: "dynamic_field",
		Items: &catalog.ItemSchema{Type: "string", Format: "dynamic_field"}}
	assert.Equal(t, Key{Type: "array", ItemType: "string"}, KeyFor(f))
}

func TestEncoderKind(t *testing.T) {
	assert.Equal(t, "str_escaped_regex", EncodeEscapedRegex.String())
	assert.Equal(t, "data_scope", EncodeDataScope.String())
	assert.Equal(t, "EncoderKind(99)", EncoderKind(99).String())

	assert.True(t, EncodeCSVInt.IsCSV())
	assert.False(t, EncodeInt.IsCSV())
}

func TestOperatorSpec_ExprField(t *testing.T) {
	assert.Equal(t, "saved_query", EqualsSavedQuery.ExprField("sq_field"))
	assert.Equal(t, "hostname", Contains.ExprField("hostname"))
}
