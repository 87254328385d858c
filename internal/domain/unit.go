package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"
)

const (
	// DefaultStartTemplate is the opponent's move line
	DefaultStartTemplate = "{{upper .Actor}} is making move {{.Index}} against {{upper .Counterpart}}"
	// DefaultCounterTemplate is the counterpart's reply line
	DefaultCounterTemplate = "{{upper .Counterpart}} is making move {{.Index}} against {{upper .Actor}}"
)

// Unit is a single unit of work: two delays, each followed by one message.
// Units are values and are never mutated once built.
type Unit struct {
	Name            string
	Index           int
	Counterpart     string
	PreDelay        time.Duration
	PostDelay       time.Duration
	StartTemplate   string // empty uses DefaultStartTemplate
	CounterTemplate string // empty uses DefaultCounterTemplate
}

// MessageData holds the template variables available to unit messages
type MessageData struct {
	Actor       string
	Counterpart string
	Index       int
}

// Total returns the sum of both delays
func (u Unit) Total() time.Duration {
	return u.PreDelay + u.PostDelay
}

// Label identifies the unit in logs, e.g. "mortal 1#3"
func (u Unit) Label() string {
	return fmt.Sprintf("%s#%d", u.Name, u.Index)
}

// Validate checks the unit before any delay is issued
func (u Unit) Validate() error {
	return u.validate(-1)
}

func (u Unit) validate(pos int) error {
	if strings.TrimSpace(u.Name) == "" {
		return &InvalidUnitError{Position: pos, Name: u.Name, Reason: "name is required"}
	}
	if u.Index < 0 {
		return &InvalidUnitError{Position: pos, Name: u.Name, Reason: fmt.Sprintf("index %d is negative", u.Index)}
	}
	if u.PreDelay < 0 {
		return durationError("pre_delay", u.PreDelay)
	}
	if u.PostDelay < 0 {
		return durationError("post_delay", u.PostDelay)
	}
	if _, err := compile(u.startSource()); err != nil {
		return &InvalidUnitError{Position: pos, Name: u.Name, Reason: err.Error()}
	}
	if _, err := compile(u.counterSource()); err != nil {
		return &InvalidUnitError{Position: pos, Name: u.Name, Reason: err.Error()}
	}
	return nil
}

// ValidateBatch validates every unit, reporting the first failure with its position
func ValidateBatch(units []Unit) error {
	for i, u := range units {
		if err := u.validate(i); err != nil {
			return err
		}
	}
	return nil
}

// StartLine renders the message emitted after the pre-delay
func (u Unit) StartLine() (string, error) {
	return Render(u.startSource(), u.data())
}

// CounterLine renders the message emitted after the post-delay
func (u Unit) CounterLine() (string, error) {
	return Render(u.counterSource(), u.data())
}

func (u Unit) counterpart() string {
	if u.Counterpart == "" {
		return DefaultCounterpart
	}
	return u.Counterpart
}

func (u Unit) startSource() string {
	if u.StartTemplate == "" {
		return DefaultStartTemplate
	}
	return u.StartTemplate
}

func (u Unit) counterSource() string {
	if u.CounterTemplate == "" {
		return DefaultCounterTemplate
	}
	return u.CounterTemplate
}

func (u Unit) data() MessageData {
	return MessageData{Actor: u.Name, Counterpart: u.counterpart(), Index: u.Index}
}

var (
	templateFuncs = template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
	templateCache sync.Map // source -> *template.Template
)

func compile(src string) (*template.Template, error) {
	if t, ok := templateCache.Load(src); ok {
		return t.(*template.Template), nil
	}
	t, err := template.New("message").Funcs(templateFuncs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}
	templateCache.Store(src, t)
	return t, nil
}

// Render executes a message template source against data
func Render(src string, data any) (string, error) {
	t, err := compile(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}

// maxDelaySeconds is the longest delay a time.Duration can hold
const maxDelaySeconds = float64(math.MaxInt64) / float64(time.Second)

// NewDelay converts a seconds value into a duration, rejecting negative,
// NaN, infinite and out-of-range input
func NewDelay(field string, seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds >= maxDelaySeconds {
		return 0, &InvalidDurationError{Field: field, Value: fmt.Sprintf("%v", seconds)}
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// ParseDelay parses a delay written either as a Go duration ("1.5s", "100ms")
// or as plain seconds ("1.5")
func ParseDelay(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, durationError(field, d)
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InvalidDurationError{Field: field, Value: s}
	}
	return NewDelay(field, secs)
}
