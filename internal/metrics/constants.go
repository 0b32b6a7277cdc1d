package metrics

// Metric names
const (
	MetricNamePressesTotal        = "keymaster_presses_total"
	MetricNameUpgradesPurchased   = "keymaster_upgrades_purchased_total"
	MetricNameChallengesCompleted = "keymaster_challenges_completed_total"
	MetricNameChallengeScore      = "keymaster_challenge_score"
	MetricNameKeysUnlocked        = "keymaster_keys_unlocked"
	MetricNameLifetimePresses     = "keymaster_lifetime_presses"
	MetricNameSavesTotal          = "keymaster_saves_total"
)

// Metric help text
const (
	HelpTextPressesTotal        = "Presses earned, by source"
	HelpTextUpgradesPurchased   = "Upgrades purchased, by upgrade id"
	HelpTextChallengesCompleted = "Challenges completed, by kind"
	HelpTextChallengeScore      = "Score of completed challenges, by kind"
	HelpTextKeysUnlocked        = "Number of unlocked keys"
	HelpTextLifetimePresses     = "Lifetime presses of the loaded save"
	HelpTextSavesTotal          = "Save attempts, by result"
)

// Labels
const (
	LabelSource  = "source"
	LabelUpgrade = "upgrade"
	LabelKind    = "kind"
	LabelResult  = "result"
)

// Press sources
const (
	SourceManual   = "manual"
	SourcePassive  = "passive"
	SourceMinigame = "minigame"
)

// Save results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ChallengeScoreBuckets covers casual to very fast players.
var ChallengeScoreBuckets = []float64{1, 5, 10, 20, 40, 60, 80, 120}
