package parser

import (
	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// State is the position of the section state machine within a document.
type State int

const (
	StatePreamble State = iota
	StateDomestic
	StateInternational
	StateRewardPoints
	StateBillPayment
	StateClosed
)

func stateFor(kind models.SectionKind) State {
	switch kind {
	case models.SectionDomestic:
		return StateDomestic
	case models.SectionInternational:
		return StateInternational
	case models.SectionRewardPoints:
		return StateRewardPoints
	case models.SectionBillPayment:
		return StateBillPayment
	default:
		return StatePreamble
	}
}

// machine tracks the active section of one document and routes tokens to the
// assembler. It is discarded once the document is parsed.
type machine struct {
	state      State
	section    models.SectionKind
	cardholder string
	sawHeader  bool

	asm     *assembler
	rewards models.RewardSummary
	period  *PeriodMarker
}

func newMachine(asm *assembler) *machine {
	return &machine{state: StatePreamble, asm: asm}
}

func (m *machine) inTransactionSection() bool {
	switch m.state {
	case StateDomestic, StateInternational, StateBillPayment:
		return true
	}
	return false
}

// open reports whether a continuation line is currently acceptable.
func (m *machine) open() bool {
	return m.inTransactionSection() && m.asm.hasPending()
}

func (m *machine) feed(tok LineToken) {
	switch t := tok.(type) {
	case SectionHeader:
		m.asm.finalize()
		m.state = stateFor(t.Kind)
		m.section = t.Kind
		m.cardholder = ""
		m.sawHeader = true
		return
	case StatementEnd:
		m.close()
		return
	case PeriodMarker:
		if m.period == nil {
			m.period = &t
			m.asm.setPeriod(t.Start, t.End)
		}
		return
	}

	switch m.state {
	case StatePreamble, StateClosed:
		return
	case StateRewardPoints:
		if row, ok := tok.(RewardRow); ok {
			m.applyReward(row)
		}
		return
	}

	switch t := tok.(type) {
	case TransactionStart:
		m.asm.start(t, m.section, m.cardholder)
	case Continuation:
		m.asm.extend(t)
	case RewardRow:
		// A run of numbers inside a table is a wrapped reference.
		m.asm.extend(Continuation{Raw: t.Raw, Text: collapseSpaces(normalizeLine(t.Raw.Text))})
	case CardholderMarker:
		m.asm.finalize()
		m.cardholder = t.Name
	case Noise:
		if t.EndsTable {
			m.asm.finalize()
		}
	}
}

// close finalises any pending record and stops routing tokens.
func (m *machine) close() {
	m.asm.finalize()
	m.state = StateClosed
}

func (m *machine) applyReward(row RewardRow) {
	r := &m.rewards
	r.Found = true

	if row.Label != "" && len(row.Values) == 1 {
		v := row.Values[0]
		switch row.Label {
		case "opening balance":
			r.Opening = v
		case "points earned", "earned":
			r.Earned = v
		case "points redeemed", "redeemed":
			r.Redeemed = v
		case "points expired", "expired":
			r.Expired = v
		case "closing balance":
			r.Closing = v
		}
		return
	}

	v := row.Values
	switch len(v) {
	case 3:
		r.Opening, r.Earned, r.Closing = v[0], v[1], v[2]
	case 4:
		r.Opening, r.Earned, r.Redeemed, r.Closing = v[0], v[1], v[2], v[3]
	case 5:
		r.Opening, r.Earned, r.Redeemed, r.Expired, r.Closing = v[0], v[1], v[2], v[3], v[4]
	}
}
