package appconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"barricade.gg/backend/internal/constant"
)

// CutoffDate is an optional RFC 3339 timestamp. The zero value means unset.
type CutoffDate struct {
	time.Time
}

func (d *CutoffDate) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// accept a bare date as well
		t, err = time.Parse(time.DateOnly, value)
		if err != nil {
			return fmt.Errorf("invalid cutoff date: expect RFC 3339 timestamp or YYYY-MM-DD, but got: %s (%w)", value, err)
		}
	}
	d.Time = t.UTC()
	return nil
}

// ReasonMask is a report reason bitflag, given either as a number or as a
// comma separated list of reason names ("Hacking,Ban evasion").
type ReasonMask constant.ReportReasonFlag

func (m *ReasonMask) Decode(value string) error {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		*m = ReasonMask(n)
		return nil
	}

	names := strings.Split(value, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	f, err := constant.ReasonsFromNames(names)
	if err != nil {
		return fmt.Errorf("invalid reason mask: %w", err)
	}
	*m = ReasonMask(f)
	return nil
}
