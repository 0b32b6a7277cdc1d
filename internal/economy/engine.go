package economy

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/keymaster/internal/catalog"
)

// UnlockStep is the number of manual presses between two key unlocks.
const UnlockStep = 1000

// UnlockProgress describes how far the player is from the next key unlock.
type UnlockProgress struct {
	Unlocked      int
	Max           int
	ManualPresses int64
	NextMilestone int64
	Remaining     int64
	Complete      bool
}

// Engine is the single owner of the economy state. It is not safe for concurrent use.
type Engine struct {
	cat      *catalog.Catalog
	now      func() time.Time
	state    State
	stats    Stats
	onUnlock func(key string)
}

// New returns an engine at the default state of cat.
func New(cat *catalog.Catalog) *Engine {
	return NewWithClock(cat, time.Now)
}

// NewWithClock is New with an injectable clock for the start timestamp.
func NewWithClock(cat *catalog.Catalog, now func() time.Time) *Engine {
	if err := cat.Validate(); err != nil {
		panic(fmt.Sprintf("economy: invalid catalog: %v", err))
	}
	e := &Engine{cat: cat, now: now}
	e.Reset()
	return e
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// OnUnlock registers fn to be called with every newly unlocked key.
func (e *Engine) OnUnlock(fn func(key string)) {
	e.onUnlock = fn
}

// ApplyPresses adds amount to the balance and the lifetime total.
func (e *Engine) ApplyPresses(amount float64) {
	if amount <= 0 || math.IsNaN(amount) {
		return
	}
	e.state.CurrentPresses += amount
	e.state.LifetimePresses += amount
}

// RegisterManualPress counts a direct key press, unlocks the next key when a
// milestone is reached and pays out the click value. It returns the value applied.
func (e *Engine) RegisterManualPress() float64 {
	e.state.ManualPressCount++
	e.maybeUnlock()
	value := e.ClickValue()
	e.ApplyPresses(value)
	return value
}

// IsKeyUnlocked reports whether key is unlocked. Letters compare case-insensitively.
func (e *Engine) IsKeyUnlocked(key string) bool {
	return containsKey(e.state.UnlockedKeys, key)
}

// ClickValue computes the value of one manual press from the current state.
func (e *Engine) ClickValue() float64 {
	base := 1 + float64(e.extraKeys())
	for i, u := range e.cat.Upgrades {
		if u.Kind == catalog.ClickBonus {
			base += u.Magnitude * float64(e.state.OwnedUpgrades[i].Count)
		}
	}
	return base * e.Multiplier()
}

// PassiveRate computes presses per second from the current state.
func (e *Engine) PassiveRate() float64 {
	rate := 0.0
	for i, u := range e.cat.Upgrades {
		if u.Kind == catalog.PassiveBonus {
			rate += u.Magnitude * float64(e.state.OwnedUpgrades[i].Count)
		}
	}
	return rate * e.Multiplier()
}

// Multiplier computes the product of every owned global multiplier.
func (e *Engine) Multiplier() float64 {
	m := 1.0
	for i, u := range e.cat.Upgrades {
		if u.Kind != catalog.GlobalMultiplier {
			continue
		}
		if n := e.state.OwnedUpgrades[i].Count; n > 0 {
			m *= math.Pow(u.Magnitude, float64(n))
		}
	}
	return m
}

// Stats returns the cached derived stats.
func (e *Engine) Stats() Stats {
	return e.stats
}

// UpgradeCost returns the price of the next unit of upgrade id, saturating at
// math.MaxInt64. It panics on unknown ids.
func (e *Engine) UpgradeCost(id string) int64 {
	cost := e.costOf(e.mustIndex(id))
	if cost >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(cost)
}

// PurchaseUpgrade buys one unit of upgrade id if the balance covers its cost.
// It panics on unknown ids.
func (e *Engine) PurchaseUpgrade(id string) bool {
	idx := e.mustIndex(id)
	cost := e.costOf(idx)
	if math.IsInf(cost, 0) || e.state.CurrentPresses < cost {
		return false
	}
	e.state.CurrentPresses -= cost
	e.state.OwnedUpgrades[idx].Count++
	e.recompute()
	return true
}

// costOf is the unsaturated price used for spending.
func (e *Engine) costOf(idx int) float64 {
	u := e.cat.Upgrades[idx]
	return math.Floor(u.BaseCost * math.Pow(u.CostFactor, float64(e.state.OwnedUpgrades[idx].Count)))
}

// AdvanceTime pays out passive production for dt and returns the amount applied.
func (e *Engine) AdvanceTime(dt time.Duration) float64 {
	if e.stats.PassiveRate <= 0 || dt <= 0 {
		return 0
	}
	amount := e.stats.PassiveRate * dt.Seconds()
	e.ApplyPresses(amount)
	return amount
}

// UnlockProgress reports the position between the current and the next key unlock.
func (e *Engine) UnlockProgress() UnlockProgress {
	p := UnlockProgress{
		Unlocked:      len(e.state.UnlockedKeys),
		Max:           e.cat.MaxKeys(),
		ManualPresses: e.state.ManualPressCount,
	}
	if p.Unlocked >= p.Max {
		p.Complete = true
		return p
	}
	p.NextMilestone = int64(e.extraKeys()+1) * UnlockStep
	p.Remaining = p.NextMilestone - p.ManualPresses
	if p.Remaining < 0 {
		p.Remaining = 0
	}
	return p
}

// CheckAchievements latches every achievement whose condition now holds and
// returns the newly unlocked definitions in catalog order.
func (e *Engine) CheckAchievements() []catalog.Achievement {
	progress := catalog.Progress{
		LifetimePresses: e.state.LifetimePresses,
		PassiveRate:     e.stats.PassiveRate,
		UpgradesOwned:   e.TotalUpgradesOwned(),
	}
	var unlocked []catalog.Achievement
	for _, a := range e.cat.Achievements {
		if e.HasAchievement(a.ID) || !a.Condition(progress) {
			continue
		}
		e.state.UnlockedAchievements = append(e.state.UnlockedAchievements, a.ID)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// HasAchievement reports whether achievement id is unlocked.
func (e *Engine) HasAchievement(id string) bool {
	for _, got := range e.state.UnlockedAchievements {
		if got == id {
			return true
		}
	}
	return false
}

// TotalUpgradesOwned sums the owned count over all upgrades.
func (e *Engine) TotalUpgradesOwned() int {
	total := 0
	for _, o := range e.state.OwnedUpgrades {
		total += o.Count
	}
	return total
}

// Owned returns the owned count of upgrade id. It panics on unknown ids.
func (e *Engine) Owned(id string) int {
	return e.state.OwnedUpgrades[e.mustIndex(id)].Count
}

// UnlockedKeys returns a copy of the unlocked keys in unlock order.
func (e *Engine) UnlockedKeys() []string {
	return append([]string(nil), e.state.UnlockedKeys...)
}

// CurrentPresses returns the spendable balance.
func (e *Engine) CurrentPresses() float64 {
	return e.state.CurrentPresses
}

// LifetimePresses returns every press ever earned.
func (e *Engine) LifetimePresses() float64 {
	return e.state.LifetimePresses
}

// Snapshot returns a deep copy of the state.
func (e *Engine) Snapshot() State {
	return e.state.Clone()
}

// Restore installs s after normalising it and recomputes the derived stats.
// It returns the ids that were dropped during normalisation.
func (e *Engine) Restore(s State) []string {
	s, dropped := Normalize(e.cat, s.Clone())
	if s.StartedAt.IsZero() {
		s.StartedAt = e.now()
	}
	e.state = s
	e.recompute()
	return dropped
}

// Reset reinitialises the engine to a fresh game.
func (e *Engine) Reset() {
	e.state = DefaultState(e.cat, e.now())
	e.recompute()
}

func (e *Engine) extraKeys() int {
	n := len(e.state.UnlockedKeys) - len(e.cat.InitialKeys)
	if n < 0 {
		return 0
	}
	return n
}

func (e *Engine) maybeUnlock() {
	idx := e.extraKeys()
	if idx >= len(e.cat.UnlockOrder) || len(e.state.UnlockedKeys) >= e.cat.MaxKeys() {
		return
	}
	if e.state.ManualPressCount < int64(idx+1)*UnlockStep {
		return
	}
	key, ok := e.nextLockedKey()
	if !ok {
		return
	}
	e.state.UnlockedKeys = append(e.state.UnlockedKeys, key)
	e.recompute()
	if e.onUnlock != nil {
		e.onUnlock(key)
	}
}

// nextLockedKey returns the first key of the unlock order that is still locked.
func (e *Engine) nextLockedKey() (string, bool) {
	for _, k := range e.cat.UnlockOrder {
		if !containsKey(e.state.UnlockedKeys, k) {
			return k, true
		}
	}
	return "", false
}

func (e *Engine) recompute() {
	e.stats = Stats{
		ClickValue:  e.ClickValue(),
		PassiveRate: e.PassiveRate(),
		Multiplier:  e.Multiplier(),
	}
}

func (e *Engine) mustIndex(id string) int {
	idx, ok := e.cat.UpgradeIndex(id)
	if !ok {
		panic(fmt.Sprintf("economy: %v %q", catalog.ErrUnknownUpgrade, id))
	}
	return idx
}
