package game

// ActionType names a reducer input.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionInitializeGame
	ActionAdvancePhase
	ActionSetGameOver
	ActionResetLipSyncState
	ActionGainGag
	ActionDrawCard
	ActionPlayQueenCard
	ActionPlayEquipmentCard
	ActionActivateEquipment
	ActionSelectAttacker
	ActionSelectDefender
	ActionSetLipSyncCategory
	ActionResolveLipSync
	ActionEliminateQueen
	ActionDiscardToHandSize
	ActionPrepareQueens
	ActionApplyShantayDamage
	ActionModifyShade
	ActionAddModifier
	ActionRemoveModifier
	ActionSpendGag
	ActionDiscardCards
	ActionSearchDeck
	ActionReturnToHand
)

func (t ActionType) String() string {
	switch t {
	case ActionInitializeGame:
		return "INITIALIZE_GAME"
	case ActionAdvancePhase:
		return "ADVANCE_PHASE"
	case ActionSetGameOver:
		return "SET_GAME_OVER"
	case ActionResetLipSyncState:
		return "RESET_LIP_SYNC_STATE"
	case ActionGainGag:
		return "GAIN_GAG"
	case ActionDrawCard:
		return "DRAW_CARD"
	case ActionPlayQueenCard:
		return "PLAY_QUEEN_CARD"
	case ActionPlayEquipmentCard:
		return "PLAY_EQUIPMENT_CARD"
	case ActionActivateEquipment:
		return "ACTIVATE_EQUIPMENT"
	case ActionSelectAttacker:
		return "SELECT_ATTACKER"
	case ActionSelectDefender:
		return "SELECT_DEFENDER"
	case ActionSetLipSyncCategory:
		return "SET_LIP_SYNC_CATEGORY"
	case ActionResolveLipSync:
		return "RESOLVE_LIP_SYNC"
	case ActionEliminateQueen:
		return "ELIMINATE_QUEEN"
	case ActionDiscardToHandSize:
		return "DISCARD_TO_HAND_SIZE"
	case ActionPrepareQueens:
		return "PREPARE_QUEENS_FOR_NEXT_TURN"
	case ActionApplyShantayDamage:
		return "APPLY_SHANTAY_DAMAGE"
	case ActionModifyShade:
		return "MODIFY_SHADE"
	case ActionAddModifier:
		return "MODIFY_STAT"
	case ActionRemoveModifier:
		return "REMOVE_POWER_EFFECT"
	case ActionSpendGag:
		return "SPEND_GAG"
	case ActionDiscardCards:
		return "DISCARD_CARDS"
	case ActionSearchDeck:
		return "SEARCH_DECK"
	case ActionReturnToHand:
		return "RETURN_TO_HAND"
	default:
		return "UNKNOWN"
	}
}

// Action is a reducer input.
type Action interface {
	Type() ActionType
}

// --- Game flow ---

// InitializeGame builds both decks from the combined catalog pool and deals
// starting hands. IDs may be nil, in which case a fresh generator is used.
type InitializeGame struct {
	Queens    []*CardDefinition
	Equipment []*CardDefinition
	IDs       *IDGenerator
	Names     [2]string // defaults to "Player 1" and "CPU"
}

type AdvancePhase struct{}

type SetGameOver struct {
	Winner PlayerID
}

type ResetLipSyncState struct{}

// --- Player actions ---

type GainGag struct {
	Player PlayerID
	Amount int
}

type DrawCard struct {
	Player PlayerID
}

type PlayQueenCard struct {
	Player PlayerID
	Card   int // hand instance ID
}

type PlayEquipmentCard struct {
	Player PlayerID
	Card   int // hand instance ID
	Target int // runway queen instance ID
}

type ActivateEquipment struct {
	Player    PlayerID
	Queen     int
	Equipment int
}

// --- Lip sync ---

// SelectAttacker picks the active player's attacker. Queen 0 skips the
// lip sync.
type SelectAttacker struct {
	Queen int
}

// SelectDefender picks the defending queen. Queen 0 means no defender and
// is only accepted when the defending runway is empty.
type SelectDefender struct {
	Queen int
}

type SetLipSyncCategory struct {
	Category Category
}

// ResolveLipSync applies a judged lip sync. Result is usually produced by
// GameState.ComputeLipSync.
type ResolveLipSync struct {
	Result LipSyncResult
}

type EliminateQueen struct {
	Player PlayerID
	Queen  int
}

// --- Untuck ---

type DiscardToHandSize struct {
	Player PlayerID
}

type PrepareQueensForNextTurn struct {
	Player PlayerID
}

// --- Power effects ---

// ApplyShantayDamage removes shantay points; a negative amount heals.
type ApplyShantayDamage struct {
	Player PlayerID
	Amount int
	Source string
}

// ModifyShade adds (positive) or removes (negative) shade tokens.
type ModifyShade struct {
	Player PlayerID
	Queen  int
	Delta  int
	Source string
}

type AddModifier struct {
	Player   PlayerID
	Queen    int
	Modifier Modifier
}

// RemoveModifier removes every modifier with the tag from both runways.
type RemoveModifier struct {
	Tag string
}

type SpendGag struct {
	Player PlayerID
	Amount int
	Source string
}

// DiscardCards discards from hand, oldest first unless Random.
type DiscardCards struct {
	Player PlayerID
	Count  int
	Random bool
	Source string
}

// SearchDeck looks at the top Depth cards, keeps the strongest and puts the
// rest on the bottom.
type SearchDeck struct {
	Player PlayerID
	Depth  int
	Source string
}

// ReturnToHand moves a queen from discard to hand for Cost gag, resetting
// her base stats to Stats when non-zero.
type ReturnToHand struct {
	Player PlayerID
	Card   int
	Cost   int
	Stats  Stats
	Source string
}

func (InitializeGame) Type() ActionType           { return ActionInitializeGame }
func (AdvancePhase) Type() ActionType             { return ActionAdvancePhase }
func (SetGameOver) Type() ActionType              { return ActionSetGameOver }
func (ResetLipSyncState) Type() ActionType        { return ActionResetLipSyncState }
func (GainGag) Type() ActionType                  { return ActionGainGag }
func (DrawCard) Type() ActionType                 { return ActionDrawCard }
func (PlayQueenCard) Type() ActionType            { return ActionPlayQueenCard }
func (PlayEquipmentCard) Type() ActionType        { return ActionPlayEquipmentCard }
func (ActivateEquipment) Type() ActionType        { return ActionActivateEquipment }
func (SelectAttacker) Type() ActionType           { return ActionSelectAttacker }
func (SelectDefender) Type() ActionType           { return ActionSelectDefender }
func (SetLipSyncCategory) Type() ActionType       { return ActionSetLipSyncCategory }
func (ResolveLipSync) Type() ActionType           { return ActionResolveLipSync }
func (EliminateQueen) Type() ActionType           { return ActionEliminateQueen }
func (DiscardToHandSize) Type() ActionType        { return ActionDiscardToHandSize }
func (PrepareQueensForNextTurn) Type() ActionType { return ActionPrepareQueens }
func (ApplyShantayDamage) Type() ActionType       { return ActionApplyShantayDamage }
func (ModifyShade) Type() ActionType              { return ActionModifyShade }
func (AddModifier) Type() ActionType              { return ActionAddModifier }
func (RemoveModifier) Type() ActionType           { return ActionRemoveModifier }
func (SpendGag) Type() ActionType                 { return ActionSpendGag }
func (DiscardCards) Type() ActionType             { return ActionDiscardCards }
func (SearchDeck) Type() ActionType               { return ActionSearchDeck }
func (ReturnToHand) Type() ActionType             { return ActionReturnToHand }
