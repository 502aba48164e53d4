package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/core"
	"emuhost/emu/log"
	"emuhost/hw/audio"
	"emuhost/hw/input"
	"emuhost/hw/video/shaders"
)

type Config struct {
	DefaultProfile string                      `toml:"default_profile"`
	Audio          AudioConfig                 `toml:"audio"`
	Video          VideoConfig                 `toml:"video"`
	Profiles       map[string]ProfileConfig    `toml:"profiles"`
	Controllers    map[string]ControllerConfig `toml:"controllers"`
}

type AudioConfig struct {
	Backend      string `toml:"backend"`       // sdl or oto
	BufferFrames int    `toml:"buffer_frames"` // device buffer size, 0 for default
	Record       string `toml:"record"`        // record audio to that WAV file
}

type VideoConfig struct {
	Scale  int    `toml:"scale"`
	VSync  bool   `toml:"vsync"`
	Shader string `toml:"shader"`
}

// ProfileConfig selects the region and the controllers plugged into each
// port. An empty port name leaves the port empty.
type ProfileConfig struct {
	Region string `toml:"region"` // auto, pal or ntsc
	Port1  string `toml:"port1"`
	Port2  string `toml:"port2"`
}

type ControllerConfig struct {
	Kind        string                `toml:"kind"` // pad or mouse
	Buttons     map[string]input.Code `toml:"buttons"`
	Sensitivity uint8                 `toml:"sensitivity"`
}

const cfgFilename = "config.toml"

// DefaultConfigPath returns the path of the configuration file in the user
// configuration directory.
func DefaultConfigPath() (string, error) {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(cfgdir, "emuhost", cfgFilename), nil
}

func DefaultConfig() Config {
	return Config{
		DefaultProfile: "default",
		Audio: AudioConfig{
			Backend:      audio.BackendSDL,
			BufferFrames: 1024,
		},
		Video: VideoConfig{
			Scale:  3,
			VSync:  true,
			Shader: shaders.DefaultName,
		},
		Profiles: map[string]ProfileConfig{
			"default": {Region: "auto", Port1: "keyboard"},
			"mouse":   {Region: "auto", Port1: "keyboard", Port2: "mouse"},
		},
		Controllers: map[string]ControllerConfig{
			"keyboard": {
				Kind: "pad",
				Buttons: map[string]input.Code{
					"Up":     input.Key(sdl.SCANCODE_UP),
					"Down":   input.Key(sdl.SCANCODE_DOWN),
					"Left":   input.Key(sdl.SCANCODE_LEFT),
					"Right":  input.Key(sdl.SCANCODE_RIGHT),
					"B":      input.Key(sdl.SCANCODE_Z),
					"A":      input.Key(sdl.SCANCODE_X),
					"Y":      input.Key(sdl.SCANCODE_A),
					"X":      input.Key(sdl.SCANCODE_S),
					"L":      input.Key(sdl.SCANCODE_Q),
					"R":      input.Key(sdl.SCANCODE_W),
					"Select": input.Key(sdl.SCANCODE_TAB),
					"Start":  input.Key(sdl.SCANCODE_RETURN),
				},
			},
			"mouse": {
				Kind: "mouse",
				Buttons: map[string]input.Code{
					"Left":  input.MouseButton(sdl.BUTTON_LEFT),
					"Right": input.MouseButton(sdl.BUTTON_RIGHT),
				},
				Sensitivity: 1,
			},
		},
	}
}

// LoadConfig loads the configuration at path. If path is empty the default
// path is used, and a missing file gives the default configuration.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").String("key", key.String()).String("path", path).End()
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults sets the fields left empty by the configuration file.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.DefaultProfile == "" {
		c.DefaultProfile = def.DefaultProfile
	}
	if c.Audio.Backend == "" {
		c.Audio.Backend = def.Audio.Backend
	}
	if c.Audio.BufferFrames == 0 {
		c.Audio.BufferFrames = def.Audio.BufferFrames
	}
	if c.Video.Scale == 0 {
		c.Video.Scale = def.Video.Scale
	}
	if c.Video.Shader == "" {
		c.Video.Shader = def.Video.Shader
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]ProfileConfig)
	}
	for name, p := range def.Profiles {
		if _, ok := c.Profiles[name]; !ok {
			c.Profiles[name] = p
		}
	}
	if c.Controllers == nil {
		c.Controllers = make(map[string]ControllerConfig)
	}
	for name, ctrl := range def.Controllers {
		if _, ok := c.Controllers[name]; !ok {
			c.Controllers[name] = ctrl
		}
	}
}

// Encode writes the configuration in TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Check validates the configuration. An invalid shader name is not fatal,
// the default one is used instead.
func (c *Config) Check() error {
	switch c.Audio.Backend {
	case audio.BackendSDL, audio.BackendOto:
	default:
		return fmt.Errorf("audio: unknown backend %q (valid: %s, %s)", c.Audio.Backend, audio.BackendSDL, audio.BackendOto)
	}
	if c.Audio.BufferFrames < 0 || c.Audio.BufferFrames > 1<<16-1 {
		return fmt.Errorf("audio: buffer_frames out of range: %d", c.Audio.BufferFrames)
	}
	if c.Video.Scale < 1 || c.Video.Scale > 16 {
		return fmt.Errorf("video: scale out of range: %d", c.Video.Scale)
	}
	if !shaders.Exists(c.Video.Shader) {
		log.ModEmu.Warnf("Invalid shader name %q, fallback to %q", c.Video.Shader, shaders.DefaultName)
		c.Video.Shader = shaders.DefaultName
	}

	for _, name := range sortedKeys(c.Controllers) {
		if _, err := c.controller(name); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.Profiles) {
		p := c.Profiles[name]
		if _, _, err := p.region(); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		for i, port := range []string{p.Port1, p.Port2} {
			if port == "" {
				continue
			}
			if _, ok := c.Controllers[port]; !ok {
				return fmt.Errorf("profile %q: port%d: unknown controller %q", name, i+1, port)
			}
		}
	}
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		return fmt.Errorf("default_profile: unknown profile %q (valid: %s)",
			c.DefaultProfile, strings.Join(sortedKeys(c.Profiles), ", "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) controller(name string) (*input.Profile, error) {
	ctrl, ok := c.Controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller %q", name)
	}
	kind, err := input.ParseKind(ctrl.Kind)
	if err != nil {
		return nil, fmt.Errorf("controller %q: %w", name, err)
	}
	if kind == input.KindAbsent {
		return nil, fmt.Errorf("controller %q: kind is required (pad or mouse)", name)
	}
	return input.NewProfile(name, kind, ctrl.Buttons, ctrl.Sensitivity)
}

// region returns the forced region of the profile, if any.
func (p ProfileConfig) region() (r core.Region, forced bool, err error) {
	switch strings.ToLower(p.Region) {
	case "", "auto":
		return core.NTSC, false, nil
	}
	r, err = core.ParseRegion(p.Region)
	return r, err == nil, err
}

// Profile is a resolved ProfileConfig.
type Profile struct {
	Name        string
	Region      core.Region
	ForceRegion bool
	Ports       [2]*input.Profile // nil for an empty port
}

// Profile resolves the named profile, or the default one if name is empty.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	pc, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (valid: %s)", name, strings.Join(sortedKeys(c.Profiles), ", "))
	}

	p := Profile{Name: name}
	var err error
	if p.Region, p.ForceRegion, err = pc.region(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	for i, port := range []string{pc.Port1, pc.Port2} {
		if port == "" {
			continue
		}
		if p.Ports[i], err = c.controller(port); err != nil {
			return Profile{}, fmt.Errorf("profile %q: port%d: %w", name, i+1, err)
		}
	}
	return p, nil
}

// ProfileNames returns the sorted profile names.
func (c *Config) ProfileNames() []string {
	return sortedKeys(c.Profiles)
}
