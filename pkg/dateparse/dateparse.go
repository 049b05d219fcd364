// Package dateparse reads the start dates operators type: ISO dates or
// phrases such as "next saturday".
package dateparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognized is returned when the input is neither an ISO date nor a
// phrase the natural-language rules understand.
var ErrUnrecognized = errors.New("unrecognized date")

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Parser resolves dates relative to a clock.
type Parser struct {
	w   *when.Parser
	now func() time.Time
}

// New returns a parser relative to the wall clock.
func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w, now: time.Now}
}

// WithClock returns a copy of p that resolves relative phrases against now.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	cp := *p
	cp.now = now
	return &cp
}

// ParseDate returns the calendar day input names, at midnight in loc.
func (p *Parser) ParseDate(input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnrecognized)
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return midnight(t.In(loc)), nil
		}
	}

	r, err := p.w.Parse(strings.ToLower(s), p.now().In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnrecognized, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, input)
	}
	return midnight(r.Time.In(loc)), nil
}

// ParseOptionalDate treats an empty input as no date.
func (p *Parser) ParseOptionalDate(input string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	t, err := p.ParseDate(input, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
