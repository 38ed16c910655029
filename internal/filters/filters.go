// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/idmapgo/internal/attrs"
)

// filterRegex is the pattern used to parse filter expressions into key, operator, and target components.
// It matches: key + operator + target, where operator can be negated with !
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
// This allows forms like '=', '!=', '^', '!^', etc.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unsupported operand or malformed expression) are skipped.
func BuildFilters(spec string) []Filter {
	// Don't prealloc because we don't know what len will be and performance is
	// not critical.
	//nolint:prealloc
	var filters []Filter

	// If there are no filters specified, go home early.
	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override.
	delim := ","
	if d, ok := os.LookupEnv("IDMAP_FILTER_DELIM"); ok {
		delim = d
	}

	// Split the spec and iterate over each filter spec entry.
	filterSpecs := strings.Split(spec, delim)
	for _, filterSpec := range filterSpecs {
		parts := filterRegex.FindStringSubmatch(filterSpec)

		// If a supported operand was not found, log an error and throw it away.
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		// parts[2] is the operand. It may have a leading negation. If so, trim it
		// and just use the remainder as the working operand.
		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		// We've got a valid filter, append it to the result set.
		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset returns the rows of candidates that pass every filter in
// spec, keyed by each attr's OutputKey. Transforms are left to SliceDiceSpit.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		result := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			result[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyFilters reports whether candidate passes all filters. A filter key may
// name the row key or its output title, in any case, so protein_id, Protein_ID
// and a --attrs title all work.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := resolveKey(attrs, filter.Key)
		if key == "" {
			msg := fmt.Sprintf("filter key not found: %s", filter.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}

		if !check(candidate.Get(key), filter) {
			return false
		}
	}

	return true
}

func resolveKey(attrs attrs.AttrList, name string) string {
	for _, attr := range attrs {
		if strings.EqualFold(attr.OutputKey, name) || strings.EqualFold(attr.Key, name) {
			return attr.Key
		}
	}
	return ""
}

// check evaluates one filter against a single cell. Absent and null cells
// never match, whatever the operand.
func check(value gjson.Result, filter Filter) bool {
	switch value.Type {
	case gjson.String:
		return checkStringOperand(value.Str, filter)
	case gjson.Number:
		return checkNumericOperand(value.Num, filter)
	case gjson.True, gjson.False:
		return checkStringOperand(value.String(), filter)
	case gjson.JSON:
		if filter.Operand == "@" {
			return checkContainsOperand(value, filter)
		}
		log.Errorf("operand %s is not supported on %s", filter.Operand, value.Raw)
		return false
	default:
		return false
	}
}

// checkContainsOperand is '@' over a json array (an element equals the
// target) or object (the target is one of its keys).
func checkContainsOperand(value gjson.Result, filter Filter) bool {
	found := false
	switch {
	case value.IsArray():
		value.ForEach(func(_, item gjson.Result) bool {
			found = item.String() == filter.Target
			return !found
		})
	case value.IsObject():
		found = value.Get(gjson.Escape(filter.Target)).Exists()
	default:
		log.Errorf("unsupported type for contains filtering: %s", value.Type)
		return false
	}
	return found == !filter.Negate
}

// checkNumericOperand compares numerically. Only =, > and < make sense here.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand applies a string operand. '~' ignores case, which is how
// symbols differ across organisms (TP53, Trp53). '@' is list membership for
// the ; joined gene name cells, ignoring case, and a plain substring match
// for everything else.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return (hasMember(value, filter.Target) || strings.Contains(value, filter.Target)) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

// hasMember reports whether target is one of the ; separated names in list.
func hasMember(list, target string) bool {
	if target == "" {
		return false
	}
	for _, name := range strings.Split(list, ";") {
		if strings.EqualFold(strings.TrimSpace(name), target) {
			return true
		}
	}
	return false
}
