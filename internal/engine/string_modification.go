package engine

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// StringModification transforms one string into another, per spec.md
// §4.5. Tagged-union struct, same rationale as StringSource/StringMatcher.
type StringModification struct {
	Kind string `json:"kind"`

	Set *StringSource `json:"set,omitempty"`

	All     []StringModification       `json:"all,omitempty"`
	If      *StringModificationIf      `json:"if,omitempty"`
	TryElse *StringModificationTryElse `json:"try_else,omitempty"`

	FirstNotError []StringModification `json:"first_not_error,omitempty"`

	TrimMatcher *CharMatcher `json:"trim_matcher,omitempty"` // nil means ASCII whitespace: space, \t, \n, \r, \v, \f

	Regex       string `json:"regex,omitempty"`
	compiled    *regexp.Regexp
	Replacement string `json:"replacement,omitempty"`
	ReplaceAll  bool   `json:"replace_all,omitempty"`

	Base64Alphabet string `json:"base64_alphabet,omitempty"` // "", "std", "url" select encoding.Base64*; "" defaults to std
	Base64Padding  bool   `json:"base64_padding,omitempty"`

	N int `json:"n,omitempty"` // KeepFirstNChars/RemoveFirstNChars/KeepLastNChars/RemoveLastNChars

	InsertAt *StringModificationInsertAt `json:"insert_at,omitempty"`

	HtmlAttrExtract *HtmlAttrExtractArgs `json:"html_attr_extract,omitempty"`
}

type StringModificationIf struct {
	Cond *StringMatcher      `json:"cond"`
	Then *StringModification `json:"then"`
	Else *StringModification `json:"else"`
}

type StringModificationTryElse struct {
	Try  *StringModification `json:"try"`
	Else *StringModification `json:"else"`
}

type StringModificationInsertAt struct {
	Location *StringLocation `json:"location"`
	Value    string          `json:"value"`
}

// Apply transforms value and returns the result.
func (mod *StringModification) Apply(ts *TaskState, value string) (string, error) {
	op := "StringModification." + mod.Kind
	switch mod.Kind {
	case "Set":
		v, err := mod.Set.Eval(ts)
		if err != nil {
			return "", err
		}
		if v == nil {
			return "", nil
		}
		return *v, nil
	case "Uppercase":
		return strings.ToUpper(value), nil
	case "Lowercase":
		return strings.ToLower(value), nil
	case "Trim", "TrimStart", "TrimEnd":
		return applyTrim(mod, value)
	case "All":
		out := value
		for i := range mod.All {
			var err error
			out, err = mod.All[i].Apply(ts, out)
			if err != nil {
				return "", err
			}
		}
		return out, nil
	case "If":
		ok, err := mod.If.Cond.Matches(ts, value)
		if err != nil {
			return "", err
		}
		if ok {
			return mod.If.Then.Apply(ts, value)
		}
		return mod.If.Else.Apply(ts, value)
	case "TryElse":
		out, err1 := mod.TryElse.Try.Apply(ts, value)
		if err1 == nil {
			return out, nil
		}
		out, err2 := mod.TryElse.Else.Apply(ts, value)
		if err2 != nil {
			return "", &TryElseError{First: err1, Second: err2}
		}
		return out, nil
	case "FirstNotError":
		var errs []error
		for i := range mod.FirstNotError {
			out, err := mod.FirstNotError[i].Apply(ts, value)
			if err == nil {
				return out, nil
			}
			errs = append(errs, err)
		}
		return "", &FirstNotErrorError{Errs: errs}
	case "ReplaceRegex":
		re, err := mod.compiledRegex()
		if err != nil {
			return "", newErr(KindConfiguration, op, err)
		}
		if mod.ReplaceAll {
			return re.ReplaceAllString(value, mod.Replacement), nil
		}
		replaced := false
		return re.ReplaceAllStringFunc(value, func(m string) string {
			if replaced {
				return m
			}
			replaced = true
			return re.ReplaceAllString(m, mod.Replacement)
		}), nil
	case "Base64Encode":
		return mod.base64Encoding().EncodeToString([]byte(value)), nil
	case "Base64Decode":
		out, err := mod.base64Encoding().DecodeString(value)
		if err != nil {
			return "", newErr(KindParse, op, err)
		}
		return string(out), nil
	case "PercentEncode":
		return url.QueryEscape(value), nil
	case "PercentDecode":
		out, err := url.QueryUnescape(value)
		if err != nil {
			return "", newErr(KindParse, op, err)
		}
		return out, nil
	case "JsonStringDecode":
		var out string
		if err := jsonAPI.Unmarshal([]byte(`"`+value+`"`), &out); err != nil {
			// value may already be quote-delimited; try decoding as-is.
			if err2 := jsonAPI.Unmarshal([]byte(value), &out); err2 != nil {
				return "", newErr(KindParse, op, err)
			}
		}
		return out, nil
	case "KeepFirstNChars":
		r := []rune(value)
		if mod.N >= len(r) {
			return value, nil
		}
		if mod.N <= 0 {
			return "", nil
		}
		return string(r[:mod.N]), nil
	case "RemoveFirstNChars":
		r := []rune(value)
		if mod.N >= len(r) {
			return "", nil
		}
		if mod.N <= 0 {
			return value, nil
		}
		return string(r[mod.N:]), nil
	case "KeepLastNChars":
		r := []rune(value)
		if mod.N >= len(r) {
			return value, nil
		}
		if mod.N <= 0 {
			return "", nil
		}
		return string(r[len(r)-mod.N:]), nil
	case "RemoveLastNChars":
		r := []rune(value)
		if mod.N >= len(r) {
			return "", nil
		}
		if mod.N <= 0 {
			return value, nil
		}
		return string(r[:len(r)-mod.N]), nil
	case "InsertAt":
		off, ok, err := mod.InsertAt.Location.Resolve(value)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", newErr(KindBounds, op, fmt.Errorf("location did not resolve within string of length %d", len(value)))
		}
		return value[:off] + mod.InsertAt.Value + value[off:], nil
	case "HtmlAttrExtract":
		return extractHtmlAttr(value, mod.HtmlAttrExtract)
	default:
		return "", newErr(KindConfiguration, op, fmt.Errorf("unknown StringModification kind %q", mod.Kind))
	}
}

func applyTrim(mod *StringModification, value string) (string, error) {
	cut := func(r rune) bool {
		if mod.TrimMatcher == nil {
			return strings.ContainsRune(" \t\n\r\v\f", r)
		}
		ok, err := mod.TrimMatcher.Matches(r)
		return err == nil && ok
	}
	switch mod.Kind {
	case "Trim":
		return strings.TrimFunc(value, cut), nil
	case "TrimStart":
		return strings.TrimLeftFunc(value, cut), nil
	default: // TrimEnd
		return strings.TrimRightFunc(value, cut), nil
	}
}

func (mod *StringModification) compiledRegex() (*regexp.Regexp, error) {
	if mod.compiled != nil {
		return mod.compiled, nil
	}
	re, err := regexp.Compile(mod.Regex)
	if err != nil {
		return nil, err
	}
	mod.compiled = re
	return re, nil
}

func (mod *StringModification) base64Encoding() *base64.Encoding {
	enc := base64.StdEncoding
	if mod.Base64Alphabet == "url" {
		enc = base64.URLEncoding
	}
	if !mod.Base64Padding {
		enc = enc.WithPadding(base64.NoPadding)
	}
	return enc
}
