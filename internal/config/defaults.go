package config

import (
	_ "embed"
)

//go:embed defaults/taprunner.yaml
var defaultYAML []byte

// DefaultBestScoreKey is the persistence key of the best score.
const DefaultBestScoreKey = "bestScore"

// DefaultConfig returns the default tap runner configuration on a 360x640 field.
func DefaultConfig() Config {
	return Config{
		Field: FieldConfig{
			Width:  360,
			Height: 640,
		},
		Physics: PhysicsConfig{
			Gravity:          0.3,
			JumpVelocity:     -8.2,
			MaxFallSpeed:     0,
			ReferenceFrameMs: 16,
			MaxFrameMs:       32,
		},
		Obstacles: ObstacleConfig{
			Speed:         2.5,
			Width:         55,
			GapHeight:     160,
			Spacing:       220,
			SpawnLead:     60,
			MarginTop:     60,
			MarginBottom:  140,
			RemovalMargin: 10,
		},
		Player: PlayerConfig{
			X:      90,
			StartY: 288,
			Radius: 18,
		},
		Session: SessionConfig{
			RewardScoreThreshold: 5,
			RewardMessage:        "Reward unlocked!",
			BestScoreKey:         DefaultBestScoreKey,
			BackgroundParallax:   0.25,
		},
	}
}

// DefaultYAML returns the embedded default YAML config.
func DefaultYAML() []byte {
	return defaultYAML
}
