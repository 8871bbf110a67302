// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/offroad/server/world"
	jsoniter "github.com/json-iterator/go"
	"os"
)

// Config is every tunable of generation, streaming and pathing.
// The zero value is not useful, start from DefaultConfig.
type Config struct {
	// Chunk grid
	ChunksX            int     `json:"chunksX"`
	ChunksZ            int     `json:"chunksZ"`
	ResolutionPerChunk int     `json:"resolutionPerChunk"` // Quads per chunk edge.
	SizePerChunk       float32 `json:"sizePerChunk"`       // World units per chunk edge.
	Seed               int64   `json:"seed"`

	// Base noise. Scales are feature sizes in world units.
	NoiseScale  float32    `json:"noiseScale"`
	Octaves     int        `json:"octaves"`
	Persistence float32    `json:"persistence"`
	Lacunarity  float32    `json:"lacunarity"`
	OffsetX     float32    `json:"offsetX"`
	OffsetZ     float32    `json:"offsetZ"`
	MaxHeight   float32    `json:"maxHeight"`
	HeightCurve []CurveKey `json:"heightCurve"` // Empty means identity.

	// Domain warp
	DomainWarp   bool    `json:"domainWarp"`
	WarpScale    float32 `json:"warpScale"`
	WarpStrength float32 `json:"warpStrength"`
	WarpOffsetX  float32 `json:"warpOffsetX"`
	WarpOffsetZ  float32 `json:"warpOffsetZ"`

	// Noise ridge valleys
	Valleys             bool    `json:"valleys"`
	ValleyScale         float32 `json:"valleyScale"`
	ValleyDepth         float32 `json:"valleyDepth"`
	ValleyWidthExponent float32 `json:"valleyWidthExponent"`
	ValleyOffsetX       float32 `json:"valleyOffsetX"`
	ValleyOffsetZ       float32 `json:"valleyOffsetZ"`

	// Valleys carved along path curves
	PathValleys       bool    `json:"pathValleys"`
	PathValleyWidth   float32 `json:"pathValleyWidth"` // Full width of the flat floor.
	PathValleyDepth   float32 `json:"pathValleyDepth"`
	PathValleyFalloff float32 `json:"pathValleyFalloff"`
	CarveStepVertices int     `json:"carveStepVertices"` // Vertices per build step of the carve pass.

	// Road surface meshes along path curves
	Roads               bool            `json:"roads"`
	RoadWidth           float32         `json:"roadWidth"`
	RoadCenterWidth     float32         `json:"roadCenterWidth"`
	RoadMeshStep        float32         `json:"roadMeshStep"`
	RoadRaiseHeight     float32         `json:"roadRaiseHeight"`
	DefaultGroundHeight float32         `json:"defaultGroundHeight"` // Used when a ground query misses.
	Curves              [][]world.Vec3f `json:"curves"`

	// Streaming
	LoadRadius        int           `json:"loadRadius"`
	TickInterval      world.Seconds `json:"tickInterval"`
	MaxChunksPerTick  int           `json:"maxChunksPerTick"`
	BuildStepsPerTick int           `json:"buildStepsPerTick"`
	MaxPooledChunks   int           `json:"maxPooledChunks"` // 0 means unlimited.

	// Pathing
	CellSize             float32 `json:"cellSize"`
	CenterStripCost      float32 `json:"centerStripCost"`
	RoadCost             float32 `json:"roadCost"`
	TerrainCost          float32 `json:"terrainCost"`
	HeightPenalty        float32 `json:"heightPenalty"`
	MinPathPointDistance float32 `json:"minPathPointDistance"`
}

// DefaultConfig returns a playable configuration.
func DefaultConfig() Config {
	return Config{
		ChunksX:            16,
		ChunksZ:            16,
		ResolutionPerChunk: 32,
		SizePerChunk:       64,
		Seed:               56,

		NoiseScale:  180,
		Octaves:     5,
		Persistence: 0.5,
		Lacunarity:  2,
		MaxHeight:   40,

		DomainWarp:   true,
		WarpScale:    400,
		WarpStrength: 60,
		WarpOffsetX:  1000,
		WarpOffsetZ:  -1000,

		Valleys:             true,
		ValleyScale:         350,
		ValleyDepth:         12,
		ValleyWidthExponent: 3,
		ValleyOffsetX:       -500,
		ValleyOffsetZ:       250,

		PathValleys:       true,
		PathValleyWidth:   14,
		PathValleyDepth:   8,
		PathValleyFalloff: 18,
		CarveStepVertices: 256,

		Roads:               true,
		RoadWidth:           10,
		RoadCenterWidth:     4,
		RoadMeshStep:        2,
		RoadRaiseHeight:     0.15,
		DefaultGroundHeight: 0,

		LoadRadius:        3,
		TickInterval:      0.25,
		MaxChunksPerTick:  4,
		BuildStepsPerTick: 8,
		MaxPooledChunks:   128,

		CellSize:             4,
		CenterStripCost:      1,
		RoadCost:             2,
		TerrainCost:          5,
		HeightPenalty:        0.1,
		MinPathPointDistance: 6,
	}
}

// LoadConfig reads a JSON config file over DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	buf, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(buf, &config); err != nil {
		return config, fmt.Errorf("config %s: %w", filename, err)
	}
	return config, nil
}

// ConfigError is one invalid option.
type ConfigError struct {
	Field  string
	Reason string
}

func (err *ConfigError) Error() string {
	return "invalid " + err.Field + ": " + err.Reason
}

type configErrors []error

func (errs *configErrors) positive(field string, value float32) {
	if !(value > 0) {
		*errs = append(*errs, &ConfigError{Field: field, Reason: fmt.Sprintf("must be positive, got %v", value)})
	}
}

func (errs *configErrors) nonNegative(field string, value float32) {
	if value < 0 {
		*errs = append(*errs, &ConfigError{Field: field, Reason: fmt.Sprintf("must not be negative, got %v", value)})
	}
}

func (errs *configErrors) err() error {
	return errors.Join(*errs...)
}

// ValidateGeneration checks the options the generator needs.
func (config *Config) ValidateGeneration() error {
	var errs configErrors
	errs.positive("chunksX", float32(config.ChunksX))
	errs.positive("chunksZ", float32(config.ChunksZ))
	errs.positive("resolutionPerChunk", float32(config.ResolutionPerChunk))
	errs.positive("sizePerChunk", config.SizePerChunk)
	errs.positive("noiseScale", config.NoiseScale)
	errs.nonNegative("octaves", float32(config.Octaves))
	errs.nonNegative("maxHeight", config.MaxHeight)

	if config.DomainWarp {
		errs.positive("warpScale", config.WarpScale)
	}
	if config.Valleys {
		errs.positive("valleyScale", config.ValleyScale)
		errs.nonNegative("valleyWidthExponent", config.ValleyWidthExponent)
	}
	if config.PathValleys {
		errs.nonNegative("pathValleyWidth", config.PathValleyWidth)
		errs.nonNegative("pathValleyFalloff", config.PathValleyFalloff)
		errs.positive("carveStepVertices", float32(config.CarveStepVertices))
	}
	if config.Roads {
		errs.positive("roadWidth", config.RoadWidth)
		errs.nonNegative("roadCenterWidth", config.RoadCenterWidth)
		errs.positive("roadMeshStep", config.RoadMeshStep)
		if config.RoadCenterWidth > config.RoadWidth {
			errs = append(errs, &ConfigError{Field: "roadCenterWidth", Reason: "wider than roadWidth"})
		}
	}
	if _, err := NewRemapCurve(config.HeightCurve); err != nil {
		errs = append(errs, &ConfigError{Field: "heightCurve", Reason: err.Error()})
	}
	return errs.err()
}

// ValidateStreaming checks the options the streamer needs.
func (config *Config) ValidateStreaming() error {
	var errs configErrors
	errs.nonNegative("loadRadius", float32(config.LoadRadius))
	errs.nonNegative("tickInterval", float32(config.TickInterval))
	errs.positive("maxChunksPerTick", float32(config.MaxChunksPerTick))
	errs.positive("buildStepsPerTick", float32(config.BuildStepsPerTick))
	errs.nonNegative("maxPooledChunks", float32(config.MaxPooledChunks))
	errs.positive("sizePerChunk", config.SizePerChunk)
	return errs.err()
}

// ValidatePathing checks the options the cost map and pathfinder need.
func (config *Config) ValidatePathing() error {
	var errs configErrors
	errs.positive("cellSize", config.CellSize)
	errs.nonNegative("centerStripCost", config.CenterStripCost)
	errs.nonNegative("roadCost", config.RoadCost)
	errs.nonNegative("terrainCost", config.TerrainCost)
	errs.nonNegative("heightPenalty", config.HeightPenalty)
	errs.nonNegative("minPathPointDistance", config.MinPathPointDistance)
	return errs.err()
}

// Validate checks every option.
func (config *Config) Validate() error {
	return errors.Join(config.ValidateGeneration(), config.ValidateStreaming(), config.ValidatePathing())
}

// MinChunk is the lowest coordinate of the chunk grid. The grid is centered
// on the origin.
func (config *Config) MinChunk() ChunkCoord {
	return ChunkCoord{X: -int32(config.ChunksX / 2), Z: -int32(config.ChunksZ / 2)}
}

// Bounds is the world space rectangle covered by the chunk grid.
func (config *Config) Bounds() world.AABB {
	origin := config.MinChunk().Origin(config.SizePerChunk)
	return world.AABB{
		Vec2f: origin,
		Width: float32(config.ChunksX) * config.SizePerChunk,
		Depth: float32(config.ChunksZ) * config.SizePerChunk,
	}
}

// InBounds reports whether coord is part of the chunk grid.
func (config *Config) InBounds(coord ChunkCoord) bool {
	min := config.MinChunk()
	return coord.X >= min.X && coord.Z >= min.Z &&
		coord.X < min.X+int32(config.ChunksX) && coord.Z < min.Z+int32(config.ChunksZ)
}

// VerticesPerChunk is (R+1)^2.
func (config *Config) VerticesPerChunk() int {
	n := config.ResolutionPerChunk + 1
	return n * n
}

// StaticCurves is a CurveSource of the curves listed in a Config.
type StaticCurves [][]world.Vec3f

func (curves StaticCurves) Curves() []Curve {
	result := make([]Curve, 0, len(curves))
	for _, points := range curves {
		if len(points) == 0 {
			continue
		}
		result = append(result, NewCurve(points))
	}
	return result
}
