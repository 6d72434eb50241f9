// Package main runs a headless safety-override scenario: a planar double
// integrator tracks randomized goals through a field of square obstacles
// while the intervention controller keeps it out of the unsafe sets, with
// partial observability masking and collision events logged per tick.
package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/DLMcPherson/reachsafe/dynamics"
	"github.com/DLMcPherson/reachsafe/intervention"
	"github.com/DLMcPherson/reachsafe/obstacle"
	"github.com/DLMcPherson/reachsafe/safeset"
	"github.com/DLMcPherson/reachsafe/sim"
)

var logger = golog.NewDevelopmentLogger("reachsim")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to scenario config JSON"`
	Ticks      int    `flag:"ticks,default=2000,usage=number of control ticks to run"`
	DtMillis   int    `flag:"dt-ms,default=20,usage=integration step in milliseconds"`
}

type pointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

type obstacleConfig struct {
	X         float64 `mapstructure:"x"`
	Y         float64 `mapstructure:"y"`
	HalfWidth float64 `mapstructure:"half_width"`
}

type sceneConfig struct {
	Seed                 int64            `mapstructure:"seed"`
	TriggerLevel         float64          `mapstructure:"trigger_level"`
	MaxU                 float64          `mapstructure:"max_u"`
	DetectionProbability float64          `mapstructure:"detection_probability"`
	SetID                int              `mapstructure:"set_id"`
	Start                []float64        `mapstructure:"start"`
	GoalMin              pointConfig      `mapstructure:"goal_min"`
	GoalMax              pointConfig      `mapstructure:"goal_max"`
	Obstacles            []obstacleConfig `mapstructure:"obstacles"`
}

func defaultScene() sceneConfig {
	return sceneConfig{
		Seed:                 1,
		TriggerLevel:         0.5,
		MaxU:                 1,
		DetectionProbability: obstacle.DefaultDetectionProbability,
		Start:                []float64{-8, 0, -8, 0},
		GoalMin:              pointConfig{X: -9, Y: -9},
		GoalMax:              pointConfig{X: 9, Y: 9},
		Obstacles: []obstacleConfig{
			{X: -3, Y: -3, HalfWidth: 1},
			{X: 0, Y: 4, HalfWidth: 1.5},
			{X: 4, Y: -1, HalfWidth: 1},
		},
	}
}

func loadScene(path string) (sceneConfig, error) {
	if path == "" {
		return defaultScene(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return sceneConfig{}, errors.Wrap(err, "reading scenario config")
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return sceneConfig{}, errors.Wrap(err, "parsing scenario config")
	}
	scene := defaultScene()
	if err := mapstructure.Decode(attrs, &scene); err != nil {
		return sceneConfig{}, errors.Wrap(err, "decoding scenario config")
	}
	return scene, nil
}

// buildObstacle assembles one square obstacle's palette: the raw analytic
// coupled pair, a pixelwise grid sampled from it, and a conservative pair
// padded by half the obstacle width. The collision footprint is a circle
// inscribed in the square.
func buildObstacle(cfg obstacleConfig, maxU float64) (*obstacle.Obstacle, error) {
	pairFor := func(halfWidth float64) (safeset.SafeSet, error) {
		ax, err := safeset.NewDoubleIntegratorAnalytic(halfWidth, maxU)
		if err != nil {
			return nil, err
		}
		ay, err := safeset.NewDoubleIntegratorAnalytic(halfWidth, maxU)
		if err != nil {
			return nil, err
		}
		return safeset.NewCoupledPair(ax, ay)
	}

	raw, err := pairFor(cfg.HalfWidth)
	if err != nil {
		return nil, err
	}
	conservative, err := pairFor(cfg.HalfWidth * 1.5)
	if err != nil {
		return nil, err
	}

	span := 4 * cfg.HalfWidth
	meta := safeset.GridMetadata{
		Min:      []float64{-span, -3, -span, -3},
		Dx:       []float64{span / 6, 1, span / 6, 1},
		N:        []int{13, 7, 13, 7},
		Periodic: []bool{false, false, false, false},
	}
	pixelwise, err := safeset.SampleOntoGrid(raw, meta)
	if err != nil {
		return nil, err
	}

	palette, err := safeset.NewPalette(raw, pixelwise, conservative)
	if err != nil {
		return nil, err
	}
	footprint, err := safeset.NewCircle(4, 0, 2, cfg.HalfWidth)
	if err != nil {
		return nil, err
	}
	return obstacle.New([]float64{cfg.X, 0, cfg.Y, 0}, palette, footprint)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	scene, err := loadScene(argsParsed.ConfigFile)
	if err != nil {
		return err
	}
	if len(scene.Obstacles) == 0 {
		return errors.New("scenario needs at least one obstacle")
	}

	model := dynamics.PlanarDoubleIntegrator{}
	if len(scene.Start) != model.StateDim() {
		return errors.Errorf("start state has dimension %d, model expects %d", len(scene.Start), model.StateDim())
	}

	obstacles := make([]*obstacle.Obstacle, 0, len(scene.Obstacles))
	for _, oc := range scene.Obstacles {
		o, err := buildObstacle(oc, scene.MaxU)
		if err != nil {
			return err
		}
		obstacles = append(obstacles, o)
	}
	scape, err := obstacle.NewScape(obstacles...)
	if err != nil {
		return err
	}
	//nolint:gosec
	r := rand.New(rand.NewSource(scene.Seed))
	masked := obstacle.NewMaskedScape(scape, scene.DetectionProbability, r)

	tracker := &intervention.PDTracker{
		Kp: 2, Kd: 1.5,
		PosX: 0, PosY: 2, VelX: 1, VelY: 3,
		MaxU: scene.MaxU,
	}
	ctrl, err := intervention.NewScenarioController(
		model,
		masked,
		tracker,
		intervention.ScenarioConfig{
			Config: intervention.Config{
				SetID:        scene.SetID,
				TriggerLevel: scene.TriggerLevel,
				MaxU:         scene.MaxU,
			},
			GoalMin: r2.Point{X: scene.GoalMin.X, Y: scene.GoalMin.Y},
			GoalMax: r2.Point{X: scene.GoalMax.X, Y: scene.GoalMax.Y},
			PosX:    0,
			PosY:    2,
		},
		intervention.NewLogRecorder(logger),
		nil,
		r,
		logger,
	)
	if err != nil {
		return err
	}

	simCtx, err := sim.New(model, scene.Start, ctrl, masked, intervention.NewLogRecorder(logger), nil, ctrl.RobotID(), logger)
	if err != nil {
		return err
	}

	dt := float64(argsParsed.DtMillis) / 1000
	logger.Infow("scenario start",
		"robot", ctrl.RobotID(),
		"obstacles", len(scene.Obstacles),
		"goal_x", ctrl.Goal().X,
		"goal_y", ctrl.Goal().Y,
		"ticks", argsParsed.Ticks,
		"dt", dt,
	)
	start := time.Now()
	for i := 0; i < argsParsed.Ticks; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := simCtx.Tick(ctx, dt); err != nil {
			return err
		}
	}
	state := simCtx.State()
	logger.Infow("scenario done",
		"elapsed", time.Since(start),
		"x", state[0],
		"y", state[2],
		"mode", ctrl.Mode(),
	)
	return nil
}
