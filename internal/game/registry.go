package game

import (
	"fmt"
	"sort"
)

// PowerRegistry indexes powers by ID and by trigger.
type PowerRegistry struct {
	byID      map[string]*Power
	byTrigger map[PowerTrigger][]string
}

func NewPowerRegistry() *PowerRegistry {
	return &PowerRegistry{
		byID:      make(map[string]*Power),
		byTrigger: make(map[PowerTrigger][]string),
	}
}

// Register adds a power. Registering an ID twice is an error.
func (r *PowerRegistry) Register(p *Power) error {
	if _, ok := r.byID[p.ID]; ok {
		return fmt.Errorf("power %s already registered", p.ID)
	}
	r.byID[p.ID] = p
	seen := map[PowerTrigger]bool{}
	for _, ab := range p.Abilities {
		if !seen[ab.Trigger] {
			seen[ab.Trigger] = true
			r.byTrigger[ab.Trigger] = append(r.byTrigger[ab.Trigger], p.ID)
		}
	}
	return nil
}

// Lookup returns the power with the given ID, or nil.
func (r *PowerRegistry) Lookup(id string) *Power {
	if id == "" {
		return nil
	}
	return r.byID[id]
}

// ByTrigger returns the powers with an ability on t, sorted by ID.
func (r *PowerRegistry) ByTrigger(t PowerTrigger) []*Power {
	ids := append([]string(nil), r.byTrigger[t]...)
	sort.Strings(ids)
	out := make([]*Power, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns every registered power ID in sorted order.
func (r *PowerRegistry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Powers is the built-in registry, used by states and managers given none.
var Powers = mustRegistry(builtinPowers())

// LookupPower looks a power up in the built-in registry.
func LookupPower(id string) *Power {
	return Powers.Lookup(id)
}

func mustRegistry(powers []*Power) *PowerRegistry {
	r := NewPowerRegistry()
	for _, p := range powers {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

var allStats = Stats{Charisma: 1, Uniqueness: 1, Nerve: 1, Talent: 1}

func neg(s Stats) Stats {
	return Stats{Charisma: -s.Charisma, Uniqueness: -s.Uniqueness, Nerve: -s.Nerve, Talent: -s.Talent}
}

func scale(s Stats, k int) Stats {
	return Stats{Charisma: s.Charisma * k, Uniqueness: s.Uniqueness * k, Nerve: s.Nerve * k, Talent: s.Talent * k}
}

func builtinPowers() []*Power {
	return []*Power{
		{
			ID:   "DEATH_DROP_SUPREME",
			Name: "Death Drop Supreme",
			Text: "If Aja wins a Lip Sync based on Talent, the opponent's Queen receives 1 Shade Token and you gain 1 Gag Token.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncWin,
				Mode:      ModeReactive,
				Condition: CategoryIn{CategoryTalent},
				Effects: []PowerEffect{
					{Kind: PowerModifyShade, Scope: ScopeBattleOpponent, Amount: 1},
					{Kind: PowerGainGag, Scope: ScopeOwner, Amount: 1},
				},
			}},
		},
		{
			ID:   "DEMON_BELLE",
			Name: "Demon Belle",
			Text: "Once per game, if Bosco would receive a Shade Token, you may prevent it. If you do, Bosco gains +2 Nerve until your next Untuck phase.",
			Abilities: []Ability{{
				Trigger:     PowerWouldShade,
				Mode:        ModeReactive,
				OncePerGame: true,
				Effects: []PowerEffect{
					{Kind: PowerPreventShade, Scope: ScopeSelf},
					{Kind: PowerModifyStat, Scope: ScopeSelf, Stats: Stats{Nerve: 2}},
				},
			}},
		},
		{
			ID:   "LIL_JON_YEAH",
			Name: "Lil Jon Yeah!",
			Text: "If the Lip Sync category is Charisma, DeJa Skye gets +3 Charisma for this Lip Sync. If DeJa Skye wins, draw 1 card.",
			Abilities: []Ability{
				{
					Trigger:   PowerLipSyncStart,
					Mode:      ModePassive,
					Condition: CategoryIn{CategoryCharisma},
					Effects:   []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeSelf, Stats: Stats{Charisma: 3}}},
				},
				{
					Trigger:   PowerLipSyncWin,
					Mode:      ModePassive,
					Condition: CategoryIn{CategoryCharisma},
					Effects:   []PowerEffect{{Kind: PowerDraw, Scope: ScopeOwner, Amount: 1}},
				},
			},
		},
		{
			ID:   "OTHERWORLDLY_GLAMOUR",
			Name: "Otherworldly Glamour",
			Text: "When Irene the Alien is played to the Runway, you may look at the top 3 cards of your Look Book. Put one into your hand and the rest on the bottom.",
			Abilities: []Ability{{
				Trigger: PowerOnPlay,
				Mode:    ModeReactive,
				Effects: []PowerEffect{{Kind: PowerSearchDeck, Scope: ScopeOwner, Amount: 3}},
			}},
		},
		{
			ID:   "BROADWAY_POLISH",
			Name: "Broadway Polish",
			Text: "Olivia Lux's Talent cannot be reduced by opponent's card effects. If Olivia Lux wins a Lip Sync, opponent loses 1 additional Shantay Point.",
			Abilities: []Ability{
				{
					Trigger: PowerAlways,
					Mode:    ModePassive,
					Effects: []PowerEffect{{Kind: PowerProtectStat, Scope: ScopeSelf, Stat: CategoryTalent}},
				},
				{
					Trigger: PowerLipSyncWin,
					Mode:    ModePassive,
					Effects: []PowerEffect{{Kind: PowerExtraDamage, Scope: ScopeOpponent, Amount: 1}},
				},
			},
		},
		{
			ID:   "RISE_FROM_ASHES",
			Name: "Rise From Ashes",
			Text: "If Phoenix is Read for Filth, you may pay 3 Gag Tokens to return her to your hand instead of the discard pile. Her stats become 5/5/5/5.",
			Abilities: []Ability{{
				Trigger: PowerEliminated,
				Mode:    ModeReactive,
				Cost:    EffectCost{Gag: 3},
				Effects: []PowerEffect{{Kind: PowerReturnToHand, Scope: ScopeSelf, Stats: Uniform(5)}},
			}},
		},
		{
			ID:   "TINY_TWIRL_TERROR",
			Name: "Tiny Twirl Terror",
			Text: "During a Lip Sync, if Jorgeous has lower base Talent than the opposing Queen, Jorgeous gains +3 Talent for this Lip Sync.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncStart,
				Mode:      ModePassive,
				Condition: StatCompare{Subject: SubjectSelfBase, Stat: CategoryTalent, Op: OpLT, Against: SubjectOpponentBase},
				Effects:   []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeSelf, Stats: Stats{Talent: 3}}},
			}},
		},
		{
			ID:   "TRANOS_REALNESS",
			Name: "Tranos Realness",
			Text: "Opponent's Queens need 1 additional Shade Token to be Read for Filth while Kerri Colby is on your Runway.",
			Abilities: []Ability{{
				Trigger: PowerAlways,
				Mode:    ModePassive,
				Effects: []PowerEffect{{Kind: PowerOpponentShadeLimit, Scope: ScopeOpponentQueens, Amount: 1}},
			}},
		},
		{
			ID:   "CINEMATIC_ODDITY",
			Name: "Cinematic Oddity",
			Text: "Once per game, during your Werk Room phase, you may force an opponent to discard 1 random card and they lose 2 Shantay Points.",
			Abilities: []Ability{{
				Trigger:     PowerActivate,
				Mode:        ModeActivated,
				Condition:   All{PhaseIs(PhaseWerkRoom), OwnersTurn{}},
				OncePerGame: true,
				Effects: []PowerEffect{
					{Kind: PowerDiscard, Scope: ScopeOpponent, Amount: 1},
					{Kind: PowerExtraDamage, Scope: ScopeOpponent, Amount: 2},
				},
			}},
		},
		{
			ID:   "HEAVYWEIGHT_CHAMP",
			Name: "The Heavyweight Champ",
			Text: "When Mistress Isabelle Brooks wins a Lip Sync, the opponent's Queen also loses 1 point from each C.U.N.T. stat for their next Lip Sync.",
			Abilities: []Ability{{
				Trigger:  PowerLipSyncWin,
				Mode:     ModeReactive,
				Duration: 2,
				Effects:  []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeBattleOpponent, Stats: neg(allStats)}},
			}},
		},
		{
			ID:   "ATLANTA_LEGEND",
			Name: "Atlanta Legend",
			Text: "At the start of your Spill the Tea phase, if Nicole Paige Brooks is on your Runway, gain 1 additional Gag Token.",
			Abilities: []Ability{{
				Trigger:   PowerPhaseChange,
				Mode:      ModePassive,
				Condition: All{PhaseIs(PhaseSpillTheTea), OwnersTurn{}},
				Effects:   []PowerEffect{{Kind: PowerGainGag, Scope: ScopeOwner, Amount: 1}},
			}},
		},
		{
			ID:   "COMEDY_ROAST",
			Name: "Comedy Roast",
			Text: "If Tina Burner wins a Lip Sync based on Charisma or Talent, the opponent loses Shantay Points equal to double the score difference.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncWin,
				Mode:      ModeReactive,
				Condition: CategoryIn{CategoryCharisma, CategoryTalent},
				Effects:   []PowerEffect{{Kind: PowerExtraDamage, Scope: ScopeOpponent, Value: ScoreDiffTimes(2)}},
			}},
		},
		{
			ID:   "NEON_DREAMSCAPE",
			Name: "Neon Dreamscape",
			Text: "When Acid Betty is played to the Runway, choose an opponent's Queen. That Queen gets -2 to all C.U.N.T. stats until your next Untuck phase.",
			Abilities: []Ability{{
				Trigger:  PowerOnPlay,
				Mode:     ModeReactive,
				Duration: 1,
				Effects:  []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeOpponentQueens, Stats: scale(allStats, -2)}},
			}},
		},
		{
			ID:   "PUERTO_RICAN_HUNTRESS",
			Name: "Puerto Rican Huntress",
			Text: "If Alyssa Hunter is in a Lip Sync and the category is Talent or Charisma, you may pay 1 Gag Token to give her +2 in that category.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncStart,
				Mode:      ModeReactive,
				Condition: CategoryIn{CategoryTalent, CategoryCharisma},
				Cost:      EffectCost{Gag: 1},
				Effects:   []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeSelf, Value: Const(2)}},
			}},
		},
		{
			ID:   "CUCU_POWER",
			Name: "Cucu Power",
			Text: "When Cynthia Lee Fontaine is played, you may remove 1 Shade Token from another Queen on your Runway. If an opponent's Queen has 0 Gag Cost, Cucu gets +2 Talent.",
			Abilities: []Ability{
				{
					Trigger: PowerOnPlay,
					Mode:    ModeReactive,
					Effects: []PowerEffect{{Kind: PowerModifyShade, Scope: ScopeOtherOwnQueen, Amount: -1}},
				},
				{
					Trigger:   PowerLipSyncStart,
					Mode:      ModePassive,
					Condition: OpponentHasFreeQueen{},
					Effects:   []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeSelf, Stats: Stats{Talent: 2}}},
				},
			},
		},
		{
			ID:   "INSECTOID_EDGE",
			Name: "Insectoid Edge",
			Text: "If Daya Betty is the only Queen on your Runway, her Nerve and Uniqueness are considered 10 for Lip Syncs.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncStart,
				Mode:      ModePassive,
				Condition: RunwayCount(1),
				Effects:   []PowerEffect{{Kind: PowerRaiseStat, Scope: ScopeSelf, Stats: Stats{Nerve: 10, Uniqueness: 10}}},
			}},
		},
		{
			ID:   "ICE_QUEEN_KICKS",
			Name: "Ice Queen Kicks",
			Text: "During a Lip Sync, if the category is Talent, Denali gets an additional +1 Talent for each Equipment card attached to her.",
			Abilities: []Ability{{
				Trigger:   PowerLipSyncStart,
				Mode:      ModePassive,
				Condition: All{CategoryIn{CategoryTalent}, EquipCountAtLeast(1)},
				Effects:   []PowerEffect{{Kind: PowerModifyStat, Scope: ScopeSelf, Stat: CategoryTalent, Value: EquipmentCount{}}},
			}},
		},
		{
			ID:   "GLAMOUR_TOAD_RESILIENCE",
			Name: "Glamour Toad Resilience",
			Text: "Ginger Minj starts with 1 extra Shantay Point. Once per game, prevent being Read for Filth by discarding 2 cards.",
			Abilities: []Ability{
				{
					Trigger: PowerOnPlay,
					Mode:    ModePassive,
					Effects: []PowerEffect{{Kind: PowerHeal, Scope: ScopeOwner, Amount: 1}},
				},
				{
					Trigger:     PowerWouldEliminate,
					Mode:        ModeReactive,
					Condition:   HandAtLeast(2),
					Cost:        EffectCost{Discard: 2},
					OncePerGame: true,
					Effects:     []PowerEffect{{Kind: PowerPreventElimination, Scope: ScopeSelf}},
				},
			},
		},
	}
}
