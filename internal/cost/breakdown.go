package cost

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Complexity scales the estimated hours of a work item.
type Complexity string

const (
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

// Multiplier returns the hour multiplier. Unknown values count as medium.
func (c Complexity) Multiplier() float64 {
	switch c {
	case ComplexityLow:
		return 0.8
	case ComplexityHigh:
		return 1.3
	case ComplexityVeryHigh:
		return 1.6
	default:
		return 1.0
	}
}

var (
	ErrItemNotFound = errors.New("work item not found")
	ErrInvalidInput = errors.New("invalid cost input")
)

// WorkItem is one estimated task. RiskFactor is a percentage (0-100).
type WorkItem struct {
	ID         string     `json:"id" yaml:"id"`
	Category   string     `json:"category" yaml:"category"`
	Task       string     `json:"task" yaml:"task"`
	Hours      float64    `json:"hours" yaml:"hours"`
	HourlyRate float64    `json:"hourlyRate" yaml:"hourlyRate"`
	Complexity Complexity `json:"complexity" yaml:"complexity"`
	RiskFactor float64    `json:"riskFactor" yaml:"riskFactor"`
}

// AdjustedHours = hours × complexity multiplier × (1 + risk/100).
func (w WorkItem) AdjustedHours() float64 {
	return w.Hours * w.Complexity.Multiplier() * (1 + w.RiskFactor/100)
}

func (w WorkItem) validate() error {
	if strings.TrimSpace(w.Task) == "" {
		return fmt.Errorf("%w: task is required", ErrInvalidInput)
	}
	if !nonNegative(w.Hours) {
		return fmt.Errorf("%w: hours must be non-negative", ErrInvalidInput)
	}
	if !nonNegative(w.HourlyRate) {
		return fmt.Errorf("%w: hourly rate must be non-negative", ErrInvalidInput)
	}
	if w.RiskFactor < 0 || w.RiskFactor > 100 || math.IsNaN(w.RiskFactor) {
		return fmt.Errorf("%w: risk factor must be within 0-100", ErrInvalidInput)
	}
	return nil
}

// nonNegative rejects negatives, NaN and infinities.
func nonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 1)
}

// Breakdown is the cost-stage aggregate. The summary is never stored: every
// call to Summary recomputes it from the items, contingency rate and rate card.
type Breakdown struct {
	items           []WorkItem
	contingencyRate float64
	rateCard        map[string]float64
}

func New(contingencyRate float64) (*Breakdown, error) {
	b := &Breakdown{}
	if err := b.SetContingencyRate(contingencyRate); err != nil {
		return nil, err
	}
	return b, nil
}

// Items returns a copy of the work items in insertion order.
func (b *Breakdown) Items() []WorkItem {
	if b == nil {
		return nil
	}
	return append([]WorkItem(nil), b.items...)
}

func (b *Breakdown) ContingencyRate() float64 {
	if b == nil {
		return 0
	}
	return b.contingencyRate
}

func (b *Breakdown) RateCard() map[string]float64 {
	if b == nil || len(b.rateCard) == 0 {
		return nil
	}
	out := make(map[string]float64, len(b.rateCard))
	for k, v := range b.rateCard {
		out[k] = v
	}
	return out
}

// Add appends an item. An empty ID is filled with a fresh one.
func (b *Breakdown) Add(item WorkItem) (WorkItem, error) {
	if err := item.validate(); err != nil {
		return WorkItem{}, err
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if b.indexOf(item.ID) >= 0 {
		return WorkItem{}, fmt.Errorf("%w: work item %q already exists", ErrInvalidInput, item.ID)
	}
	b.items = append(b.items, item)
	return item, nil
}

// Update replaces the item with the same ID.
func (b *Breakdown) Update(item WorkItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	item.ID = strings.TrimSpace(item.ID)
	i := b.indexOf(item.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	b.items[i] = item
	return nil
}

func (b *Breakdown) Remove(id string) error {
	i := b.indexOf(strings.TrimSpace(id))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return nil
}

// SetContingencyRate sets the contingency percentage applied to the subtotal.
func (b *Breakdown) SetContingencyRate(rate float64) error {
	if !nonNegative(rate) {
		return fmt.Errorf("%w: contingency rate must be non-negative", ErrInvalidInput)
	}
	b.contingencyRate = rate
	return nil
}

// SetRateCard replaces the per-category hourly rate overrides.
func (b *Breakdown) SetRateCard(card map[string]float64) error {
	next := make(map[string]float64, len(card))
	for category, rate := range card {
		if !nonNegative(rate) {
			return fmt.Errorf("%w: rate for %q must be non-negative", ErrInvalidInput, category)
		}
		next[strings.TrimSpace(category)] = rate
	}
	b.rateCard = next
	return nil
}

func (b *Breakdown) indexOf(id string) int {
	for i, it := range b.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (b *Breakdown) effectiveRate(w WorkItem) float64 {
	if rate, ok := b.rateCard[strings.TrimSpace(w.Category)]; ok {
		return rate
	}
	return w.HourlyRate
}

type Line struct {
	ItemID        string  `json:"itemId"`
	Category      string  `json:"category"`
	Task          string  `json:"task"`
	Rate          float64 `json:"rate"`
	AdjustedHours float64 `json:"adjustedHours"`
	Cost          float64 `json:"cost"`
}

type CategoryTotal struct {
	Category      string  `json:"category"`
	Hours         float64 `json:"hours"`
	AdjustedHours float64 `json:"adjustedHours"`
	Cost          float64 `json:"cost"`
}

type Summary struct {
	Lines           []Line          `json:"lines"`
	ByCategory      []CategoryTotal `json:"byCategory"`
	TotalHours      float64         `json:"totalHours"`
	AdjustedHours   float64         `json:"adjustedHours"`
	Subtotal        float64         `json:"subtotal"`
	ContingencyRate float64         `json:"contingencyRate"`
	Contingency     float64         `json:"contingency"`
	Total           float64         `json:"total"`
}

// Summary aggregates the current items.
func (b *Breakdown) Summary() Summary {
	out := Summary{Lines: []Line{}, ByCategory: []CategoryTotal{}}
	if b == nil {
		return out
	}
	byCat := make(map[string]*CategoryTotal)
	for _, w := range b.items {
		adjusted := w.AdjustedHours()
		rate := b.effectiveRate(w)
		line := Line{
			ItemID:        w.ID,
			Category:      w.Category,
			Task:          w.Task,
			Rate:          rate,
			AdjustedHours: adjusted,
			Cost:          adjusted * rate,
		}
		out.Lines = append(out.Lines, line)
		out.TotalHours += w.Hours
		out.AdjustedHours += adjusted
		out.Subtotal += line.Cost

		ct, ok := byCat[w.Category]
		if !ok {
			ct = &CategoryTotal{Category: w.Category}
			byCat[w.Category] = ct
		}
		ct.Hours += w.Hours
		ct.AdjustedHours += adjusted
		ct.Cost += line.Cost
	}
	for _, ct := range byCat {
		out.ByCategory = append(out.ByCategory, *ct)
	}
	sort.Slice(out.ByCategory, func(i, j int) bool {
		return out.ByCategory[i].Category < out.ByCategory[j].Category
	})
	out.ContingencyRate = b.contingencyRate
	out.Contingency = out.Subtotal * b.contingencyRate / 100
	out.Total = out.Subtotal + out.Contingency
	return out
}

type breakdownJSON struct {
	WorkItems       []WorkItem         `json:"workItems"`
	ContingencyRate float64            `json:"contingencyRate"`
	RateCard        map[string]float64 `json:"rateCard,omitempty"`
	Summary         *Summary           `json:"summary,omitempty"`
}

// MarshalJSON emits the items together with a freshly computed summary.
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	s := b.Summary()
	items := b.Items()
	if items == nil {
		items = []WorkItem{}
	}
	return json.Marshal(breakdownJSON{
		WorkItems:       items,
		ContingencyRate: b.ContingencyRate(),
		RateCard:        b.RateCard(),
		Summary:         &s,
	})
}

// UnmarshalJSON restores items, contingency and rate card. Any encoded
// summary is ignored and recomputed on demand.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var in breakdownJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	next := Breakdown{}
	if err := next.SetContingencyRate(in.ContingencyRate); err != nil {
		return err
	}
	if err := next.SetRateCard(in.RateCard); err != nil {
		return err
	}
	for _, it := range in.WorkItems {
		if _, err := next.Add(it); err != nil {
			return fmt.Errorf("work item %q: %w", it.ID, err)
		}
	}
	*b = next
	return nil
}
