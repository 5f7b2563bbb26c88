package ticket

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
)

// DefaultNumberPrefix starts every ticket number
const DefaultNumberPrefix = "TK"

const sequenceWidth = 4

// NumberPrefix returns the same-day prefix, e.g. "TK-20260314-".
// date must already be in the store's time zone.
func NumberPrefix(date time.Time, prefix string) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return fmt.Sprintf("%s-%s-", prefix, date.Format("20060102"))
}

// ParseSequence extracts the counter from a number carrying dayPrefix
func ParseSequence(dayPrefix, number string) (int, error) {
	if !strings.HasPrefix(number, dayPrefix) {
		return 0, shared.NewDomainError("INVALID_TICKET_NUMBER", fmt.Sprintf("ticket number %q does not start with %q", number, dayPrefix))
	}
	seq, err := strconv.Atoi(number[len(dayPrefix):])
	if err != nil || seq < 0 {
		return 0, shared.NewDomainError("INVALID_TICKET_NUMBER", fmt.Sprintf("ticket number %q has no numeric sequence", number))
	}
	return seq, nil
}

// NextNumber returns the number following last for dayPrefix. An empty last
// starts the day at 0001.
func NextNumber(dayPrefix, last string) (string, error) {
	seq := 0
	if last != "" {
		var err error
		seq, err = ParseSequence(dayPrefix, last)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s%0*d", dayPrefix, sequenceWidth, seq+1), nil
}
