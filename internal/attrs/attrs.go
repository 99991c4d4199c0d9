// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// EnvTimezone names the zone that the t transform converts timestamps to. TZ
// is consulted when it is unset.
const EnvTimezone = "OPCTL_TIMEZONE"

var lengthRegex = regexp.MustCompile(`-?\d+`)

// now is swapped in tests.
var now = time.Now

// Attr represents each of the keys to be included in the output. Key is a
// path into a response item, e.g. "Schedule.ScheduleExpression" or
// "Tags[0].Value".
type Attr struct {
	// The path to extract from the result JSON object.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the attr's transform spec to value. Specs combine:
//
//	t|T  convert an RFC3339 timestamp to the configured zone
//	h|H  humanize: relative time for timestamps, separators for numbers
//	l|L  lower case
//	u|U  upper case
//	n    truncate to n characters; -n elides the middle instead
func (a *Attr) Transform(value interface{}) interface{} {
	if strings.ContainsAny(a.TransformSpec, "hH") {
		if n, ok := value.(float64); ok {
			if n == math.Trunc(n) {
				return humanize.Comma(int64(n))
			}
			return humanize.Commaf(n)
		}
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "hH") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			result = humanize.RelTime(t, now(), "ago", "from now")
		}
	} else if strings.ContainsAny(a.TransformSpec, "tT") {
		result = a.localTime(result)
	}

	// The last case transform wins, so an attr's own spec overrides a global
	// one prepended to it.  IOW...  --attrs '*::U,Name::l' is lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same logic for length: take the last (overriding) match.
	if a.TransformSpec != "" {
		match := lengthRegex.FindAllString(a.TransformSpec, -1)
		if len(match) != 0 {
			l, _ := strconv.Atoi(match[len(match)-1])
			result = truncate(result, l)
		}
	}

	return result
}

func (a *Attr) localTime(value string) string {
	tz := os.Getenv(EnvTimezone)
	if tz == "" {
		tz = os.Getenv("TZ")
	}

	// Only convert when a zone has been named explicitly.
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warnf("unknown timezone %q", tz)
		return value
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Debugf("not a timestamp: %s", value)
		return value
	}

	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

func truncate(s string, l int) string {
	abs := int(math.Abs(float64(l)))
	if len(s) <= abs {
		return s
	}
	if l >= 0 {
		return s[:l]
	}
	// Keep both ends of ids and ARNs, which differ at the tail.
	keep := abs/2 - 1
	if keep < 1 {
		return s[:abs]
	}
	return s[:keep] + ".." + s[len(s)-keep:]
}

type AttrList []Attr

// Return a string representation of the AttrList.  This should match the format
// of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses an --attrs value and adds each spec to the list.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// Each spec is key[:output[:transform]]. The output key defaults to the
	// last segment of the key.
	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// A leading ! keeps the attr for filtering and sorting only.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}

		// A leading "." anchors at the document root, which is the default.
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// A repeated attr (a default for the command, or entered twice)
		// updates the existing entry in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// Only the first global spec counts.
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

// Visible returns the attrs that appear in output.
func (a AttrList) Visible() AttrList {
	var out AttrList
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

func (a *AttrList) Type() string {
	return "list"
}
