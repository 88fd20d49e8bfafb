package game

import (
	"math/rand"
	"time"

	"github.com/peterkuimelis/werkroom/internal/log"
)

// Reducer is the pure transition function of a game. Reduce never mutates
// the state it is given: it returns a new state that shares every player
// and card it did not touch.
type Reducer struct {
	Now    func() time.Time // log timestamps; time.Now when nil
	Rand   *rand.Rand       // shuffles, random categories, random discards
	Powers *PowerRegistry   // stamped on every state it produces; keeps the state's registry when nil
}

func NewReducer(rng *rand.Rand) *Reducer {
	return &Reducer{Now: time.Now, Rand: rng}
}

func (r *Reducer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Reducer) intn(n int) int {
	if r.Rand == nil {
		return rand.Intn(n)
	}
	return r.Rand.Intn(n)
}

func (r *Reducer) shuffle(cards []*CardInstance) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if r.Rand == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	r.Rand.Shuffle(len(cards), swap)
}

// Reduce applies a to gs. Illegal actions are logged and otherwise leave
// the state unchanged. AdvancePhase on a finished game returns gs itself.
func (r *Reducer) Reduce(gs *GameState, a Action) *GameState {
	if init, ok := a.(InitializeGame); ok {
		return r.initialize(init)
	}
	if gs == nil {
		gs = &GameState{}
	}
	if a == nil {
		d := r.begin(gs)
		d.fail("", "nil action")
		return d.gs
	}
	if gs.Over() {
		if _, ok := a.(AdvancePhase); ok {
			return gs
		}
		d := r.begin(gs)
		d.warn("", "Game is over (%s wins), %s ignored.", d.name(gs.Winner), a.Type())
		return d.gs
	}
	if gs.Players[0] == nil || gs.Players[1] == nil {
		d := r.begin(gs)
		d.fail("", "No game in progress, %s ignored.", a.Type())
		return d.gs
	}

	d := r.begin(gs)
	switch act := a.(type) {
	case AdvancePhase:
		d.advancePhase()
	case SetGameOver:
		d.setGameOver(act)
	case ResetLipSyncState:
		d.resetLipSync()
		d.info(log.EventPhaseChange, "", "", "Resetting Lip Sync state explicitly.")
	case GainGag:
		d.gainGag(act.Player, act.Amount)
	case DrawCard:
		d.draw(act.Player)
	case PlayQueenCard:
		d.playQueen(act)
	case PlayEquipmentCard:
		d.playEquipment(act)
	case ActivateEquipment:
		d.activateEquipment(act)
	case SelectAttacker:
		d.selectAttacker(act)
	case SelectDefender:
		d.selectDefender(act)
	case SetLipSyncCategory:
		d.setCategory(act)
	case ResolveLipSync:
		d.resolveLipSync(act.Result)
	case EliminateQueen:
		if d.gs.Player(act.Player) == nil {
			d.fail(act.Player, "Eliminate Error: Player %s not found.", act.Player)
		} else if q, _ := d.gs.Player(act.Player).Runway.Find(act.Queen); q == nil {
			d.warn(act.Player, "Eliminate Fail: Queen %d not on %s's runway.", act.Queen, d.name(act.Player))
		} else {
			d.eliminate(act.Player, act.Queen)
		}
	case DiscardToHandSize:
		if d.requirePhase(act.Player, PhaseUntuck, "Discard") {
			d.trimHand(act.Player)
		}
	case PrepareQueensForNextTurn:
		if d.requirePhase(act.Player, PhaseUntuck, "Prepare") {
			d.readyQueens(act.Player)
		}
	case ApplyShantayDamage:
		d.applyDamage(act.Player, act.Amount, act.Source)
		d.checkWinner()
	case ModifyShade:
		d.modifyShade(act)
	case AddModifier:
		d.addModifier(act)
	case RemoveModifier:
		d.removeModifier(act.Tag)
	case SpendGag:
		d.spendGag(act)
	case DiscardCards:
		d.discardCards(act)
	case SearchDeck:
		d.searchDeck(act)
	case ReturnToHand:
		d.returnToHand(act)
	default:
		d.fail("", "Unknown action type: %s. No state change.", a.Type())
	}
	return d.gs
}

// --- Draft: copy-on-write view of the state being built ---

type draft struct {
	r       *Reducer
	gs      *GameState
	players [2]bool
	owned   map[*CardInstance]bool
}

func (r *Reducer) begin(gs *GameState) *draft {
	c := *gs
	if r.Powers != nil {
		c.Registry = r.Powers
	}
	return &draft{r: r, gs: &c, owned: make(map[*CardInstance]bool)}
}

// player returns a writable copy of the player, or nil.
func (d *draft) player(id PlayerID) *Player {
	p := d.gs.Player(id)
	if p == nil {
		return nil
	}
	i := id.Index()
	if !d.players[i] {
		p = p.Clone()
		d.gs.Players[i] = p
		d.players[i] = true
	}
	return p
}

// own returns a writable copy of c.
func (d *draft) own(c *CardInstance) *CardInstance {
	if d.owned[c] {
		return c
	}
	n := c.Clone()
	d.owned[n] = true
	return n
}

// queen returns a writable copy of a runway queen, or nil.
func (d *draft) queen(owner PlayerID, id int) *CardInstance {
	p := d.gs.Player(owner)
	if p == nil {
		return nil
	}
	q, idx := p.Runway.Find(id)
	if q == nil {
		return nil
	}
	if d.owned[q] {
		return q
	}
	p = d.player(owner)
	q = d.own(q)
	p.Runway[idx] = q
	return q
}

// equipment returns a writable copy of equipment attached to a runway queen.
func (d *draft) equipment(owner PlayerID, queenID, eqID int) *CardInstance {
	q := d.queen(owner, queenID)
	if q == nil {
		return nil
	}
	eq, idx := q.FindEquipment(eqID)
	if eq == nil {
		return nil
	}
	eq = d.own(eq)
	q.Equipment[idx] = eq
	return eq
}

func (d *draft) name(id PlayerID) string {
	if p := d.gs.Player(id); p != nil {
		return p.Name
	}
	return string(id)
}

// --- Logging ---

func (d *draft) emit(e log.GameEvent) {
	d.gs.Seq++
	e.Seq = d.gs.Seq
	e.Time = d.r.now()
	e.Turn = d.gs.TurnNumber
	e.Phase = d.gs.Phase.String()
	d.gs.Log = log.Prepend(d.gs.Log, e)
}

func (d *draft) info(t log.EventType, player PlayerID, card, format string, args ...any) {
	d.emit(log.Event(t, string(player), card, format, args...))
}

func (d *draft) warn(player PlayerID, format string, args ...any) {
	d.emit(log.Warn(string(player), format, args...))
}

func (d *draft) fail(player PlayerID, format string, args ...any) {
	d.emit(log.Error(string(player), format, args...))
}

// requirePhase logs a rejection unless the game is in phase p.
func (d *draft) requirePhase(player PlayerID, p Phase, what string) bool {
	if d.gs.Player(player) == nil {
		d.fail(player, "%s Error: Player %s not found.", what, player)
		return false
	}
	if d.gs.Phase != p {
		d.warn(player, "%s Fail: Not in %s phase (Current: %s).", what, p, d.gs.Phase)
		return false
	}
	return true
}

// --- Resources ---

func (d *draft) gainGag(id PlayerID, amount int) {
	cur := d.gs.Player(id)
	if cur == nil {
		d.fail(id, "Gag Error: Player %s not found.", id)
		return
	}
	if amount <= 0 {
		d.warn(id, "Gag Fail: cannot gain %d Gag.", amount)
		return
	}
	if cur.GagTokens >= MaxGag {
		d.info(log.EventGagChange, id, "", "%s at max Gag (%d).", cur.Name, cur.GagTokens)
		return
	}
	next := min(cur.GagTokens+amount, MaxGag)
	p := d.player(id)
	p.GagTokens = next
	d.info(log.EventGagChange, id, "", "%s gains %d Gag (%d).", p.Name, next-cur.GagTokens, next)
}

func (d *draft) spendGag(act SpendGag) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Gag Error: Player %s not found.", act.Player)
		return
	}
	if act.Amount <= 0 {
		return
	}
	if cur.GagTokens < act.Amount {
		d.warn(act.Player, "%s needs %d Gag for %s (has %d).", cur.Name, act.Amount, act.Source, cur.GagTokens)
		return
	}
	p := d.player(act.Player)
	p.GagTokens -= act.Amount
	d.info(log.EventGagChange, act.Player, act.Source, "%s pays %d Gag for %s (%d).", p.Name, act.Amount, act.Source, p.GagTokens)
}

// applyDamage removes shantay points, floored at zero. Negative amounts heal.
func (d *draft) applyDamage(id PlayerID, amount int, source string) {
	cur := d.gs.Player(id)
	if cur == nil {
		d.fail(id, "Damage Error: Player %s not found.", id)
		return
	}
	if amount == 0 {
		return
	}
	p := d.player(id)
	p.ShantayPoints = max(0, p.ShantayPoints-amount)
	if amount < 0 {
		d.info(log.EventShantayChange, id, source, "%s gains %d Shantay Points from %s (%d).", p.Name, -amount, source, p.ShantayPoints)
		return
	}
	d.info(log.EventShantayChange, id, source, "%s takes %d damage. Shantay Points remaining: %d.", p.Name, amount, p.ShantayPoints)
}

// checkWinner ends the game once a player is out of shantay points.
func (d *draft) checkWinner() {
	if d.gs.Over() {
		return
	}
	var winner PlayerID
	switch {
	case d.gs.Players[0].ShantayPoints <= 0:
		winner = Player2
	case d.gs.Players[1].ShantayPoints <= 0:
		winner = Player1
	default:
		return
	}
	d.gs.Winner = winner
	d.gs.Phase = PhaseGameOver
	d.info(log.EventWin, winner, "", "GAME OVER! %s snatches the crown!", d.name(winner))
}

func (d *draft) setGameOver(act SetGameOver) {
	if !act.Winner.Valid() {
		d.fail("", "Game Over Error: unknown winner %q.", act.Winner)
		return
	}
	d.gs.Winner = act.Winner
	d.gs.Phase = PhaseGameOver
	d.info(log.EventWin, act.Winner, "", "Game Over explicitly set! Winner: %s!", d.name(act.Winner))
}

// --- Cards ---

// draw moves the top of the deck into the hand.
func (d *draft) draw(id PlayerID) bool {
	cur := d.gs.Player(id)
	if cur == nil {
		d.fail(id, "Draw Error: Player %s not found.", id)
		return false
	}
	if len(cur.Deck) == 0 {
		d.warn(id, "%s deck empty! Cannot draw.", cur.Name)
		return false
	}
	if len(cur.Hand) >= MaxHandSize {
		d.warn(id, "%s hand full, cannot draw.", cur.Name)
		return false
	}
	p := d.player(id)
	card := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	p.Hand = append(p.Hand, card)
	d.info(log.EventDraw, id, card.Name(), "%s draws (%s). Hand: %d", p.Name, card.Name(), len(p.Hand))
	return true
}

func (d *draft) playQueen(act PlayQueenCard) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Play Error: Player %s not found.", act.Player)
		return
	}
	if d.gs.Phase != PhaseWerkRoom {
		d.warn(act.Player, "Play Fail: Not in Werk Room phase (Current: %s).", d.gs.Phase)
		return
	}
	if d.gs.CurrentTurn != act.Player {
		d.warn(act.Player, "Play Fail: Not %s's turn.", act.Player)
		return
	}
	card, idx := cur.FindInHand(act.Card)
	if card == nil {
		d.warn(act.Player, "Play Error: Card %d not in %s's hand.", act.Card, act.Player)
		return
	}
	if !card.Def.IsQueen() {
		d.warn(act.Player, "Play Fail: %s is not a valid Queen card (missing C.U.N.T. stats).", card.Name())
		return
	}
	if cur.GagTokens < card.Def.Cost {
		d.warn(act.Player, "Play Fail: %s needs %d Gag (has %d).", card.Name(), card.Def.Cost, cur.GagTokens)
		return
	}
	slot := cur.Runway.FirstEmpty()
	if slot < 0 {
		d.warn(act.Player, "Play Fail: Runway full for %s.", cur.Name)
		return
	}

	p := d.player(act.Player)
	p.GagTokens -= card.Def.Cost
	p.Hand = removeAt(p.Hand, idx)
	q := d.own(card)
	q.CanAttack = false
	q.ShadeTokens = 0
	p.Runway[slot] = q
	d.info(log.EventPlayQueen, act.Player, q.Name(), "%s plays %s (Cost: %d). Gag tokens remaining: %d.", p.Name, q.Name(), q.Def.Cost, p.GagTokens)
}

// trimHand discards the oldest cards until the hand fits.
func (d *draft) trimHand(id PlayerID) {
	cur := d.gs.Player(id)
	if cur == nil || len(cur.Hand) <= MaxHandSize {
		return
	}
	p := d.player(id)
	n := len(p.Hand) - MaxHandSize
	dropped := p.Hand[:n]
	p.Hand = append([]*CardInstance(nil), p.Hand[n:]...)
	p.Discard = append(p.Discard, dropped...)
	d.info(log.EventHandSizeDiscard, id, "", "%s discards %d card(s) to meet hand size. Discarded: %s.", p.Name, n, cardNames(dropped))
}

// readyQueens makes every queen on the player's runway attack-ready.
func (d *draft) readyQueens(id PlayerID) {
	cur := d.gs.Player(id)
	if cur == nil {
		return
	}
	for _, q := range cur.Runway.Queens() {
		if q.CanAttack {
			continue
		}
		d.queen(id, q.ID).CanAttack = true
		d.info(log.EventReady, id, q.Name(), "%s is now ready to sissy that walk (can attack next turn).", q.Name())
	}
}

func (d *draft) discardCards(act DiscardCards) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Discard Error: Player %s not found.", act.Player)
		return
	}
	if len(cur.Hand) == 0 || act.Count <= 0 {
		d.info(log.EventDiscard, act.Player, act.Source, "%s has no cards to discard.", cur.Name)
		return
	}
	p := d.player(act.Player)
	var dropped []*CardInstance
	for i := 0; i < act.Count && len(p.Hand) > 0; i++ {
		idx := 0
		if act.Random {
			idx = d.r.intn(len(p.Hand))
		}
		dropped = append(dropped, p.Hand[idx])
		p.Hand = removeAt(p.Hand, idx)
	}
	p.Discard = append(p.Discard, dropped...)
	d.info(log.EventDiscard, act.Player, act.Source, "%s discards %s (%s).", p.Name, cardNames(dropped), act.Source)
}

// searchDeck keeps the strongest of the top cards and bottoms the rest.
func (d *draft) searchDeck(act SearchDeck) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Search Error: Player %s not found.", act.Player)
		return
	}
	if len(cur.Deck) == 0 || act.Depth <= 0 {
		d.warn(act.Player, "%s has no cards to search.", cur.Name)
		return
	}
	if len(cur.Hand) >= MaxHandSize {
		d.warn(act.Player, "%s hand full, cannot search.", cur.Name)
		return
	}
	p := d.player(act.Player)
	n := min(act.Depth, len(p.Deck))
	top := p.Deck[len(p.Deck)-n:]
	best := len(top) - 1
	for i, c := range top {
		if searchRank(c) > searchRank(top[best]) {
			best = i
		}
	}
	kept := top[best]
	rest := make([]*CardInstance, 0, n-1)
	for i := len(top) - 1; i >= 0; i-- {
		if i != best {
			rest = append(rest, top[i])
		}
	}
	deck := make([]*CardInstance, 0, len(p.Deck)-1)
	deck = append(deck, rest...)
	deck = append(deck, p.Deck[:len(p.Deck)-n]...)
	p.Deck = deck
	p.Hand = append(p.Hand, kept)
	d.info(log.EventAddToHand, act.Player, kept.Name(), "%s looks at %d cards and keeps %s (%s).", p.Name, n, kept.Name(), act.Source)
}

// searchRank orders cards for SearchDeck: queens by total stats, then cost.
func searchRank(c *CardInstance) int {
	if c.Def.IsQueen() {
		s := c.OriginalStats
		return 100 + s.Charisma + s.Uniqueness + s.Nerve + s.Talent
	}
	return c.Def.Cost
}

func (d *draft) returnToHand(act ReturnToHand) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Return Error: Player %s not found.", act.Player)
		return
	}
	idx := -1
	for i, c := range cur.Discard {
		if c.ID == act.Card {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.warn(act.Player, "Return Fail: Card %d not in %s's discard.", act.Card, cur.Name)
		return
	}
	card := cur.Discard[idx]
	if cur.GagTokens < act.Cost {
		d.warn(act.Player, "Return Fail: %s needs %d Gag (has %d).", card.Name(), act.Cost, cur.GagTokens)
		return
	}
	if len(cur.Hand) >= MaxHandSize {
		d.warn(act.Player, "Return Fail: %s hand full.", cur.Name)
		return
	}
	p := d.player(act.Player)
	p.GagTokens -= act.Cost
	p.Discard = removeAt(p.Discard, idx)
	c := d.own(card)
	c.ShadeTokens = 0
	c.CanAttack = false
	c.Equipment = nil
	c.Modifiers = nil
	if act.Stats != (Stats{}) {
		c.OriginalStats = act.Stats
	}
	p.Hand = append(p.Hand, c)
	d.info(log.EventAddToHand, act.Player, c.Name(), "%s returns to %s's hand with stats %s (%s).", c.Name(), p.Name, c.OriginalStats, act.Source)
}

// --- Modifiers ---

func (d *draft) addModifier(act AddModifier) {
	if d.gs.Player(act.Player) == nil {
		d.fail(act.Player, "Modifier Error: Player %s not found.", act.Player)
		return
	}
	q := d.queen(act.Player, act.Queen)
	if q == nil {
		d.warn(act.Player, "Modifier Fail: Queen %d not on %s's runway.", act.Queen, d.name(act.Player))
		return
	}
	q.Modifiers = append(q.Modifiers, act.Modifier)
	d.info(log.EventStatModifier, act.Player, q.Name(), "%s gets %+d/%+d/%+d/%+d from %s.", q.Name(),
		act.Modifier.Delta.Charisma, act.Modifier.Delta.Uniqueness, act.Modifier.Delta.Nerve, act.Modifier.Delta.Talent, act.Modifier.Source)
}

func (d *draft) removeModifier(tag string) {
	if tag == "" {
		return
	}
	d.dropModifiers(func(_ PlayerID, m Modifier) bool { return m.Tag == tag })
}

// dropModifiers removes the matching modifiers from both runways, logging
// each queen whose stats return.
func (d *draft) dropModifiers(match func(owner PlayerID, m Modifier) bool) {
	for _, id := range []PlayerID{Player1, Player2} {
		p := d.gs.Player(id)
		if p == nil {
			continue
		}
		for _, q := range p.Runway.Queens() {
			hit := false
			for _, m := range q.Modifiers {
				if match(id, m) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
			w := d.queen(id, q.ID)
			kept := w.Modifiers[:0]
			var sources []string
			for _, m := range w.Modifiers {
				if match(id, m) {
					sources = append(sources, m.Source)
					continue
				}
				kept = append(kept, m)
			}
			w.Modifiers = kept
			for _, s := range sources {
				d.info(log.EventStatModifier, id, w.Name(), "%s's %s effect wears off.", w.Name(), s)
			}
		}
	}
}

// --- helpers ---

func removeAt(cards []*CardInstance, idx int) []*CardInstance {
	out := make([]*CardInstance, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}

func cardNames(cards []*CardInstance) string {
	s := ""
	for i, c := range cards {
		if i > 0 {
			s += ", "
		}
		s += c.Name()
	}
	return s
}
