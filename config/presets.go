package config

// Presets are named scenario tunings selectable from the command line.
var Presets = map[string]*Config{
	"pile": {
		Scenario: "pile", Dt: DefaultDt, Duration: 10.0, Seed: 1,
		Grid: GridConfig{CellSize: DefaultCellSize, NumCells: DefaultNumCells},
		Physics: TuningConfig{
			GravityY: -98.0, Restitution: 0.4, Friction: 0.2,
			CollisionResponse: true, MomentumFactor: DefaultMomentumFactor,
		},
	},
	"chain": {
		Scenario: "chain", Dt: DefaultDt, Duration: 15.0, Seed: 1,
		Grid: GridConfig{CellSize: DefaultCellSize, NumCells: DefaultNumCells},
		Physics: TuningConfig{
			GravityY: -98.0, Restitution: DefaultRestitution, Friction: DefaultFriction,
			CollisionResponse: true, MomentumFactor: DefaultMomentumFactor,
		},
	},
	"newton": {
		Scenario: "newton", Dt: DefaultDt, Duration: 10.0, Seed: 1,
		Grid: GridConfig{CellSize: DefaultCellSize, NumCells: DefaultNumCells},
		Physics: TuningConfig{
			Restitution: 1.0, CollisionResponse: true,
			MomentumFactor: DefaultMomentumFactor,
		},
	},
	"eat": {
		Scenario: "eat", Dt: DefaultDt, Duration: 8.0, Seed: 7,
		Grid: GridConfig{CellSize: DefaultCellSize, NumCells: DefaultNumCells},
		Physics: TuningConfig{
			Restitution: 0.6, CollisionResponse: true, EatEnabled: true,
			MomentumFactor: DefaultMomentumFactor,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
