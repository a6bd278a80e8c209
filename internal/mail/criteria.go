package mail

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"oauth-gateway/internal/common/errors"
)

// imapDateLayout is the RFC 3501 date-text form used by SINCE.
const imapDateLayout = "02-Jan-2006"

// imapDatePattern accepts pre-formatted SINCE values with a one or two
// digit day, e.g. "1-Jan-2024" or "01-Jan-2024".
var imapDatePattern = regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-\d{4}$`)

// SearchFilter holds the inputs compiled into an IMAP SEARCH criteria
// string. Zero-valued fields are simply absent from the output.
type SearchFilter struct {
	// Senders restricts matches to messages from any of these addresses.
	Senders []string
	// Receivers restricts matches to messages addressed to any of these.
	Receivers []string
	// Since restricts matches to messages on or after this date.
	Since time.Time
	// SinceText is a pre-formatted D[D]-Mon-YYYY date; used when Since is
	// zero. A value in any other shape is rejected.
	SinceText string
	// UnseenOnly restricts matches to unread messages.
	UnseenOnly bool
}

// BuildSearchCriteria compiles the filter into an IMAP SEARCH criteria
// string, joining the active clauses as UNSEEN, SINCE, FROM, TO in that
// order. With no filters at all it returns "ALL".
//
// Multiple addresses compile to nested binary ORs, folded left:
//
//	(OR (OR (FROM "a") (FROM "b")) (FROM "c"))
//
// Servers parse OR as a strictly binary operator, so the fold shape is
// part of the wire contract. Addresses are quoted verbatim; embedded
// double quotes are not escaped.
func BuildSearchCriteria(filter SearchFilter) (string, error) {
	var parts []string

	if filter.UnseenOnly {
		parts = append(parts, "UNSEEN")
	}

	sinceText, err := sinceClause(filter.Since, filter.SinceText)
	if err != nil {
		return "", err
	}
	if sinceText != "" {
		parts = append(parts, "SINCE "+sinceText)
	}

	if len(filter.Senders) > 0 {
		clause, err := addressClause("FROM", filter.Senders)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	if len(filter.Receivers) > 0 {
		clause, err := addressClause("TO", filter.Receivers)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	if len(parts) == 0 {
		return "ALL", nil
	}

	return strings.Join(parts, " "), nil
}

func sinceClause(since time.Time, sinceText string) (string, error) {
	if !since.IsZero() {
		return since.Format(imapDateLayout), nil
	}
	if sinceText == "" {
		return "", nil
	}
	if !imapDatePattern.MatchString(sinceText) {
		return "", errors.InvalidDateFormatError(sinceText)
	}
	return sinceText, nil
}

// addressClause builds the FROM or TO clause for an address list.
// Blank entries are dropped first; a list that had entries but kept none
// is an input error rather than a silent no-op.
func addressClause(field string, addrs []string) (string, error) {
	valid := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			valid = append(valid, trimmed)
		}
	}
	if len(valid) == 0 {
		return "", errors.NoValidAddressesError(strings.ToLower(field))
	}

	clause := fmt.Sprintf("%s %q", field, valid[0])
	if len(valid) == 1 {
		return clause, nil
	}

	for _, addr := range valid[1:] {
		clause = fmt.Sprintf("OR (%s) (%s %q)", clause, field, addr)
	}
	return "(" + clause + ")", nil
}
