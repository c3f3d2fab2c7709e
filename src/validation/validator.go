package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Oudwins/zog"
)

// ErrContract is wrapped by every contract violation
var ErrContract = errors.New("contract violation")

// ValidateGetResults checks the arguments of a get-results command
func ValidateGetResults(contract GetResultsContract) error {
	return issuesToError(GetResultsSchema.Validate(&contract))
}

// ValidateLoadResults checks a load-results command carries a results list.
// An empty list is valid.
func ValidateLoadResults[T any](results []T) error {
	if results == nil {
		return fmt.Errorf("%w: results are required", ErrContract)
	}
	return nil
}

// issuesToError flattens a zog issue map into a single error with a stable message
func issuesToError(issues zog.ZogIssueMap) error {
	if len(issues) == 0 {
		return nil
	}

	fields := make([]string, 0, len(issues))
	for field := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	seen := make(map[string]bool)
	var messages []string
	for _, field := range fields {
		for _, issue := range issues[field] {
			if issue == nil || seen[issue.Message] {
				continue
			}
			seen[issue.Message] = true
			messages = append(messages, issue.Message)
		}
	}

	if len(messages) == 0 {
		return ErrContract
	}
	return fmt.Errorf("%w: %s", ErrContract, strings.Join(messages, "; "))
}
