package engine

import (
	"fmt"

	"github.com/tariktz/urlcleaner/internal/normurl"
)

// UrlPart names one logical part of a URL, used by StringSource.Part,
// ExtractPart, JobSourceHostPart, Action.SetPart/ModifyPart/CopyPart/
// MovePart, and the Condition part-vs-matcher predicates, per spec.md
// §4.4/§4.6.
type UrlPart string

const (
	PartWhole           UrlPart = "Whole"
	PartScheme          UrlPart = "Scheme"
	PartHost            UrlPart = "Host"
	PartDomain          UrlPart = "Domain"
	PartSubdomain       UrlPart = "Subdomain"
	PartRegDomain       UrlPart = "RegDomain"
	PartDomainMiddle    UrlPart = "DomainMiddle"
	PartDomainSuffix    UrlPart = "DomainSuffix"
	PartNotDomainSuffix UrlPart = "NotDomainSuffix"
	PartPath            UrlPart = "Path"
	PartQuery           UrlPart = "Query"
	PartFragment        UrlPart = "Fragment"
)

// GetPart reads part from u. A nil result with a nil error means the part
// is legitimately absent (e.g. Subdomain on a URL with no subdomain),
// mirroring StringSource's Option<Cow<str>> contract.
func GetPart(u *normurl.NormUrl, part UrlPart) (*string, error) {
	strp := func(s string) *string { return &s }
	optStrp := func(s string, ok bool) *string {
		if !ok {
			return nil
		}
		return &s
	}
	switch part {
	case PartWhole:
		return strp(u.String()), nil
	case PartScheme:
		return strp(u.Scheme()), nil
	case PartHost:
		return strp(u.URL().Host), nil
	case PartDomain:
		return optStrp(u.Domain()), nil
	case PartSubdomain:
		return optStrp(u.Subdomain()), nil
	case PartRegDomain:
		return optStrp(u.RegDomain()), nil
	case PartDomainMiddle:
		return optStrp(u.DomainMiddle()), nil
	case PartDomainSuffix:
		return optStrp(u.DomainSuffix()), nil
	case PartNotDomainSuffix:
		return optStrp(u.NotDomainSuffix()), nil
	case PartPath:
		return strp(u.Path()), nil
	case PartQuery:
		if q := u.Query(); q != "" {
			return strp(q), nil
		}
		return nil, nil
	case PartFragment:
		if f := u.Fragment(); f != "" {
			return strp(f), nil
		}
		return nil, nil
	default:
		return nil, newErr(KindConfiguration, "Part", fmt.Errorf("unknown url part %q", part))
	}
}

// SetPart writes value into part of u. value == nil clears the part where
// clearing is meaningful (query/fragment/subdomain); parts that cannot be
// cleared (Whole/Scheme/Host/Path) reject a nil value.
func SetPart(u *normurl.NormUrl, part UrlPart, value *string) error {
	requireValue := func(op string) (string, error) {
		if value == nil {
			return "", newErr(KindStructural, op, fmt.Errorf("part %q cannot be cleared", part))
		}
		return *value, nil
	}
	switch part {
	case PartWhole:
		v, err := requireValue("SetPart(Whole)")
		if err != nil {
			return err
		}
		return u.SetWhole(v)
	case PartScheme:
		v, err := requireValue("SetPart(Scheme)")
		if err != nil {
			return err
		}
		return u.SetScheme(v)
	case PartHost:
		v, err := requireValue("SetPart(Host)")
		if err != nil {
			return err
		}
		return u.SetHost(v)
	case PartDomain:
		v, err := requireValue("SetPart(Domain)")
		if err != nil {
			return err
		}
		return u.SetDomain(v)
	case PartSubdomain:
		return u.SetSubdomain(value)
	case PartRegDomain:
		v, err := requireValue("SetPart(RegDomain)")
		if err != nil {
			return err
		}
		return u.SetRegDomain(v)
	case PartDomainMiddle:
		v, err := requireValue("SetPart(DomainMiddle)")
		if err != nil {
			return err
		}
		return u.SetDomainMiddle(v)
	case PartDomainSuffix:
		v, err := requireValue("SetPart(DomainSuffix)")
		if err != nil {
			return err
		}
		return u.SetDomainSuffix(v)
	case PartNotDomainSuffix:
		v, err := requireValue("SetPart(NotDomainSuffix)")
		if err != nil {
			return err
		}
		return u.SetNotDomainSuffix(v)
	case PartPath:
		v, err := requireValue("SetPart(Path)")
		if err != nil {
			return err
		}
		return u.SetPath(v)
	case PartQuery:
		return u.SetQuery(value)
	case PartFragment:
		return u.SetFragment(value)
	default:
		return newErr(KindConfiguration, "SetPart", fmt.Errorf("unknown url part %q", part))
	}
}
