package constant

import (
	"fmt"
	"math/bits"
	"strings"
)

// ReportReasonFlag is a bitflag of the reasons a report was submitted for.
//
// The bit positions are persisted in reports.reasons_bitflag. Changing the
// position of an existing reason is a breaking change to stored data and must
// bump ReportReasonFlagVersion together with a data migration.
type ReportReasonFlag uint32

// ReportReasonFlagVersion is the version of the bit to reason mapping below.
const ReportReasonFlagVersion = 1

const (
	ReasonHacking ReportReasonFlag = 1 << iota
	ReasonTeamkillingGriefing
	ReasonToxicityHarassment
	ReasonRacismAntisemitism
	ReasonStreamsnipingGhosting
	ReasonBanEvasion

	ReasonCustom ReportReasonFlag = 1 << 15
)

const AllReasons = ReasonHacking |
	ReasonTeamkillingGriefing |
	ReasonToxicityHarassment |
	ReasonRacismAntisemitism |
	ReasonStreamsnipingGhosting |
	ReasonBanEvasion |
	ReasonCustom

// reasonNames is ordered by bit position.
var reasonNames = []struct {
	Flag ReportReasonFlag
	Name string
}{
	{ReasonHacking, "Hacking"},
	{ReasonTeamkillingGriefing, "Teamkilling / Griefing"},
	{ReasonToxicityHarassment, "Toxicity / Harassment"},
	{ReasonRacismAntisemitism, "Racism / Antisemitism"},
	{ReasonStreamsnipingGhosting, "Streamsniping / Ghosting"},
	{ReasonBanEvasion, "Ban evasion"},
	{ReasonCustom, "Custom"},
}

// ReasonByName returns the flag with the given human-readable name, ignoring case.
func ReasonByName(name string) (ReportReasonFlag, bool) {
	for _, r := range reasonNames {
		if strings.EqualFold(r.Name, name) {
			return r.Flag, true
		}
	}
	return 0, false
}

// ReasonsFromNames folds a list of reason names into a bitflag.
func ReasonsFromNames(names []string) (ReportReasonFlag, error) {
	var f ReportReasonFlag
	for _, name := range names {
		r, ok := ReasonByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown report reason %q", name)
		}
		f |= r
	}
	return f, nil
}

func (f ReportReasonFlag) Has(other ReportReasonFlag) bool {
	return f&other == other
}

func (f ReportReasonFlag) Intersects(other ReportReasonFlag) bool {
	return f&other != 0
}

// Valid reports whether f only contains known reasons.
func (f ReportReasonFlag) Valid() bool {
	return f != 0 && f&^AllReasons == 0
}

func (f ReportReasonFlag) Count() int {
	return bits.OnesCount32(uint32(f))
}

// Names returns the human-readable names of the reasons in f. When f contains
// ReasonCustom, custom is listed in place of the generic "Custom" label.
func (f ReportReasonFlag) Names(custom string) []string {
	names := make([]string, 0, f.Count())
	for _, r := range reasonNames {
		if !f.Has(r.Flag) {
			continue
		}
		if r.Flag == ReasonCustom && custom != "" {
			names = append(names, custom)
			continue
		}
		names = append(names, r.Name)
	}
	return names
}

// RejectReason is the reason a community gives for not banning a reported player.
type RejectReason string

const (
	RejectReasonInsufficient RejectReason = "Insufficient"
	RejectReasonInconclusive RejectReason = "Inconclusive"
)

var RejectReasons = []RejectReason{
	RejectReasonInsufficient,
	RejectReasonInconclusive,
}

func (r RejectReason) Valid() bool {
	return r == RejectReasonInsufficient || r == RejectReasonInconclusive
}
