package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/akmonengine/granule"
	"github.com/akmonengine/granule/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	dt          float64
	duration    float64
	seed        int64
	restitution float64
	friction    float64
	eat         bool
	configFile  string
	plotEnergy  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "granule",
		Short: "2D particle, joint and rigid body simulation",
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and report its outcome",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	runCmd.Flags().Float64Var(&restitution, "restitution", config.DefaultRestitution, "collision restitution")
	runCmd.Flags().Float64Var(&friction, "friction", config.DefaultFriction, "segment friction")
	runCmd.Flags().BoolVar(&eat, "eat", false, "heavier particles absorb lighter ones")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().BoolVar(&plotEnergy, "plot", false, "plot kinetic energy over time")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, scenariosCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario := args[0]

	preset := config.GetPreset(scenario)
	if preset == nil {
		return fmt.Errorf("unknown scenario: %s (available: %v)", scenario, config.ListPresets())
	}
	cfgValue := *preset
	cfg := &cfgValue

	// Config file overrides the preset, CLI flags override both
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Scenario = scenario
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("restitution") {
		cfg.Physics.Restitution = restitution
	}
	if cmd.Flags().Changed("friction") {
		cfg.Physics.Friction = friction
	}
	if cmd.Flags().Changed("eat") {
		cfg.Physics.EatEnabled = eat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	w := buildWorld(cfg)

	var broken, eaten int
	w.Events.Subscribe(granule.JOINT_BREAK, func(event granule.Event) { broken++ })
	w.Events.Subscribe(granule.PARTICLE_EATEN, func(event granule.Event) { eaten++ })

	steps := int(cfg.Duration / cfg.Dt)
	energy := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		w.Step(cfg.Dt)
		energy = append(energy, w.KineticEnergy())
	}

	fmt.Printf("scenario: %s\n", scenario)
	fmt.Printf("steps: %d (dt=%.4f)\n", steps, cfg.Dt)
	fmt.Printf("particles: %d\n", w.Arena.Len())
	fmt.Printf("joints: %d (broken: %d)\n", len(w.Joints.Joints()), broken)
	if cfg.Physics.EatEnabled {
		fmt.Printf("eaten: %d\n", eaten)
	}
	fmt.Printf("kinetic energy: %.2f\n", w.KineticEnergy())

	if plotEnergy && len(energy) > 1 {
		graph := asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy"),
		)
		fmt.Println(graph)
	}

	return nil
}

func buildWorld(cfg *config.Config) *granule.World {
	w := granule.NewWorld(cfg.Grid.CellSize, cfg.Grid.NumCells, cfg.Seed)
	w.Tuning.Gravity = mgl64.Vec2{cfg.Physics.GravityX, cfg.Physics.GravityY}
	w.Tuning.Restitution = cfg.Physics.Restitution
	w.Tuning.Friction = cfg.Physics.Friction
	w.Tuning.CollisionResponse = cfg.Physics.CollisionResponse
	w.Tuning.EatEnabled = cfg.Physics.EatEnabled
	w.Tuning.MomentumFactor = cfg.Physics.MomentumFactor

	switch cfg.Scenario {
	case "chain":
		buildChain(w)
	case "newton":
		buildNewton(w)
	case "eat":
		buildEat(w)
	default:
		buildPile(w)
	}
	return w
}

// buildPile drops a grid of particles onto a pinned floor of larger ones
func buildPile(w *granule.World) {
	for i := 0; i < 20; i++ {
		floor := w.AddParticle(mgl64.Vec2{float64(i) * 10, 0}, 10, 5)
		floor.Pinned = true
	}
	for row := 0; row < 5; row++ {
		for col := 0; col < 10; col++ {
			w.AddParticle(mgl64.Vec2{30 + float64(col)*11, 60 + float64(row)*11}, 1, 4)
		}
	}
}

// buildChain hangs a jointed chain from a pinned anchor and lets a heavy
// particle swing into it, breaking the weakest links
func buildChain(w *granule.World) {
	anchor := w.AddParticle(mgl64.Vec2{0, 100}, 5, 3)
	anchor.Pinned = true

	prev := anchor
	for i := 1; i <= 8; i++ {
		link := w.AddParticle(mgl64.Vec2{float64(i) * 12, 100}, 1, 3)
		j := w.CreateJoint(prev.Id, link.Id)
		j.Tolerance = 0.6
		prev = link
	}

	wreckingBall := w.AddParticle(mgl64.Vec2{150, 100}, 20, 8)
	wreckingBall.Velocity = mgl64.Vec2{-80, 0}
}

// buildNewton lines up resting particles and fires one at the row, elastic
func buildNewton(w *granule.World) {
	for i := 0; i < 5; i++ {
		w.AddParticle(mgl64.Vec2{float64(i) * 10.1, 0}, 1, 5)
	}
	striker := w.AddParticle(mgl64.Vec2{-60, 0}, 1, 5)
	striker.Velocity = mgl64.Vec2{50, 0}
}

// buildEat scatters particles of mixed mass on a collision course
func buildEat(w *granule.World) {
	for i := 0; i < 12; i++ {
		mass := 1.0 + float64(i%4)
		x := float64(i%4)*40 - 60
		y := float64(i/4)*40 - 40
		p := w.AddParticle(mgl64.Vec2{x, y}, mass, 4+mass)
		p.Velocity = mgl64.Vec2{-x * 0.5, -y * 0.5}
	}
}
