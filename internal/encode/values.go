package encode

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// DateLayout is the layout dates are rendered with inside date("...").
const DateLayout = "2006-01-02 15:04:05"

const versionPartWidth = 8

// parseNumber accepts an integer, falling back to a float. It returns the
// typed value and its decimal text.
func parseNumber(raw string) (any, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, "", wizerr.New(wizerr.CodeInvalidValue, "value must not be empty")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, strconv.FormatInt(n, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, "", wizerr.New(wizerr.CodeInvalidValue, "%q is not an integer or a float", s)
	}
	return f, strconv.FormatFloat(f, 'f', -1, 64), nil
}

// rawVersion converts "[epoch:]a.b.c" into the ordinal string stored in
// version fields' _raw twin: the epoch (default 0) kept as given, followed
// by each part truncated and zero-padded to 8 digits.
func rawVersion(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", wizerr.New(wizerr.CodeInvalidValue, "value must not be empty")
	}

	epoch, version := "0", s
	if before, after, found := strings.Cut(s, ":"); found {
		if strings.Contains(after, ":") {
			return "", wizerr.New(wizerr.CodeInvalidValue, "invalid version %q: more than one epoch separator", s)
		}
		if before != "" {
			epoch = before
		}
		version = after
	}

	parts := strings.Split(version, ".")
	var b strings.Builder
	b.WriteString(epoch)
	for _, part := range parts {
		if !isDigits(part) {
			return "", wizerr.New(wizerr.CodeInvalidValue, "invalid version %q: part %q is not numeric", s, part)
		}
		if len(part) > versionPartWidth {
			part = part[:versionPartWidth]
		}
		b.WriteString(strings.Repeat("0", versionPartWidth-len(part)))
		b.WriteString(part)
	}
	return b.String(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDate accepts any format dateparse understands. Values without a zone
// are taken as UTC.
func parseDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", wizerr.New(wizerr.CodeInvalidValue, "value must not be empty")
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(true))
	if err != nil {
		return "", wizerr.Wrap(wizerr.CodeInvalidValue, err, "%q is not a valid date", s)
	}
	return t.UTC().Format(DateLayout), nil
}

func parseIP(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", wizerr.Wrap(wizerr.CodeInvalidValue, err, "%q is not a valid IP address", s)
	}
	return addr.String(), nil
}

func parsePrefix(raw string) (netip.Prefix, error) {
	s := strings.TrimSpace(raw)
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, wizerr.Wrap(wizerr.CodeInvalidValue, err, "%q is not a valid subnet", s)
	}
	if p.Masked() != p {
		return netip.Prefix{}, wizerr.New(wizerr.CodeInvalidValue, "%q has host bits set, did you mean %q?", s, p.Masked().String())
	}
	return p, nil
}

func parseSubnet(raw string) (string, error) {
	p, err := parsePrefix(raw)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// subnetRange returns the CIDR and the integer forms of its network and
// broadcast addresses. Only IPv4 subnets have integer forms in AQL.
func subnetRange(raw string) (cidr, start, end string, err error) {
	p, err := parsePrefix(raw)
	if err != nil {
		return "", "", "", err
	}
	if !p.Addr().Is4() {
		return "", "", "", wizerr.New(wizerr.CodeInvalidValue, "%q is not an IPv4 subnet", p.String())
	}

	a := p.Addr().As4()
	network := uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
	hostBits := 32 - p.Bits()
	broadcast := network | uint32((uint64(1)<<hostBits)-1)

	return p.String(),
		strconv.FormatUint(uint64(network), 10),
		strconv.FormatUint(uint64(broadcast), 10),
		nil
}

func escapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}
