package types

// Palette colors shared by level content and engine effects.
const (
	ColorKrakenGreen   = "#00D664"
	ColorGitOrange     = "#F05033"
	ColorBranchMain    = "#00bfff"
	ColorBranchFeature = "#ff00ff"
	ColorGround        = "#374151"
	ColorResourceWood  = "#d97706"
	ColorObstacleVoid  = "#ef4444"
	ColorObstacleBug   = "#dc2626"
	ColorObstacleLava  = "#b91c1c"
	ColorGuideArrow    = "#FACC15"
	ColorBlockGold     = "#fbbf24"
	ColorRebaseBlock   = "#8b5cf6"
	ColorPlaceholder   = "#1f2937"
)

// Palette maps the names exposed to level scripts to their colors.
var Palette = map[string]string{
	"kraken_green":   ColorKrakenGreen,
	"git_orange":     ColorGitOrange,
	"branch_main":    ColorBranchMain,
	"branch_feature": ColorBranchFeature,
	"ground":         ColorGround,
	"resource_wood":  ColorResourceWood,
	"obstacle_void":  ColorObstacleVoid,
	"obstacle_bug":   ColorObstacleBug,
	"obstacle_lava":  ColorObstacleLava,
	"guide_arrow":    ColorGuideArrow,
	"block_gold":     ColorBlockGold,
	"rebase_block":   ColorRebaseBlock,
	"placeholder":    ColorPlaceholder,
}
