package catalog

// Upgrade ids of the default catalog.
const (
	MechanicalSwitch = "mechanical_switch"
	AutoClicker      = "auto_clicker"
	RGBLighting      = "rgb_lighting"
	StreamerSetup    = "streamer_setup"
	GoldenCaps       = "golden_caps"
	ServerBot        = "server_bot"
	QuantumKeyboard  = "quantum_keyboard"
)

// Default returns the game catalog. Each call builds fresh slices.
func Default() *Catalog {
	return &Catalog{
		Upgrades: []Upgrade{
			{ID: MechanicalSwitch, Name: "Mechanical Switches", Description: "Clicky switches. +1 per press.", BaseCost: 15, CostFactor: 1.5, Kind: ClickBonus, Magnitude: 1},
			{ID: AutoClicker, Name: "Auto-Key Presser", Description: "A little robot that presses a key for you. +1 per second.", BaseCost: 100, CostFactor: 1.2, Kind: PassiveBonus, Magnitude: 1},
			{ID: RGBLighting, Name: "RGB Lighting", Description: "Everyone knows RGB makes you faster. x1.1 to everything.", BaseCost: 500, CostFactor: 2.0, Kind: GlobalMultiplier, Magnitude: 1.1},
			{ID: StreamerSetup, Name: "Streamer Setup", Description: "Chat presses keys for you. +5 per second.", BaseCost: 1200, CostFactor: 1.3, Kind: PassiveBonus, Magnitude: 5},
			{ID: GoldenCaps, Name: "Golden Keycaps", Description: "Heavy, shiny and valuable. +10 per press.", BaseCost: 5000, CostFactor: 1.4, Kind: ClickBonus, Magnitude: 10},
			{ID: ServerBot, Name: "Server Bot Farm", Description: "A rack of servers mashing keys. +50 per second.", BaseCost: 25000, CostFactor: 1.5, Kind: PassiveBonus, Magnitude: 50},
			{ID: QuantumKeyboard, Name: "Quantum Keyboard", Description: "Presses every key in every universe. x2 to everything.", BaseCost: 100000, CostFactor: 5.0, Kind: GlobalMultiplier, Magnitude: 2},
		},
		Achievements: []Achievement{
			{ID: "start", Name: "First Click", Description: "Press a key for the first time.", Icon: "*", Condition: lifetimeAtLeast(1)},
			{ID: "hundred", Name: "Century Club", Description: "Reach 100 lifetime presses.", Icon: "C", Condition: lifetimeAtLeast(100)},
			{ID: "speed_demon", Name: "Speed Demon", Description: "Reach 10 presses per second.", Icon: ">", Condition: func(p Progress) bool { return p.PassiveRate >= 10 }},
			{ID: "keyboard_warrior", Name: "Keyboard Warrior", Description: "Reach 1,000 lifetime presses.", Icon: "W", Condition: lifetimeAtLeast(1000)},
			{ID: "upgrade_master", Name: "Upgraded", Description: "Own 5 upgrades.", Icon: "U", Condition: func(p Progress) bool { return p.UpgradesOwned >= 5 }},
			{ID: "millionaire", Name: "Millionaire", Description: "Reach 1,000,000 lifetime presses.", Icon: "$", Condition: lifetimeAtLeast(1_000_000)},
		},
		InitialKeys: []string{" ", "w", "a", "s", "d"},
		UnlockOrder: []string{"q", "e", "r", "t", "y", "u", "i", "o", "p", "f", "g", "h", "j", "k", "l", "z", "x", "c", "v", "b", "n", "m"},
		Leaderboard: []LeaderboardEntry{
			{Name: "KeyboardKing", Score: 5_000_000},
			{Name: "ClickMaster99", Score: 2_500_000},
			{Name: "WASD_Warrior", Score: 1_000_000},
			{Name: "SpaceBar_Smasher", Score: 750_000},
			{Name: "NoLife", Score: 500_000},
		},
	}
}

func lifetimeAtLeast(n float64) func(Progress) bool {
	return func(p Progress) bool {
		return p.LifetimePresses >= n
	}
}
