// This file is part of Lockstep.
//
// Lockstep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lockstep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lockstep.  If not, see <https://www.gnu.org/licenses/>.

package preferences

import (
	"fmt"

	"github.com/lockstepgb/lockstep/audio"
	"github.com/lockstepgb/lockstep/compositor"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/paths"
	"github.com/lockstepgb/lockstep/prefs"
)

// InvalidValue is the error pattern for values rejected by the preference
// hooks.
const InvalidValue = "preferences: %s: %v"

// MaxInstances is the largest number of instances supported by a session.
const MaxInstances = 2

// Preferences defines and collates all the preference values used by a
// session.
type Preferences struct {
	dsk *prefs.Disk

	// number of instances in the session
	Instances prefs.Int

	// how the instances are linked. see link.ModeList
	LinkMode    prefs.String
	LinkAddress prefs.String
	LinkPort    prefs.Int

	// log every byte exchanged over the link
	LinkLog prefs.Bool

	// the resampler used by the audio pipeline. see audio.KindList
	Resampler prefs.String

	// which instances are heard. see audio.SourceList
	AudioSource prefs.String

	// temporal blending of the composite image. see compositor.BlendList
	Blend prefs.String

	// response time used by the ghosting blend modes
	Response prefs.Float

	// see compositor.FormatList
	PixelFormat prefs.String

	// initialise instance memory to unknown state after reset
	RandomState prefs.Bool

	// use the legacy resume behaviour. only useful for comparing output with
	// older recordings
	LegacyResume prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences
// type. Values are loaded from the default preferences file.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return NewPreferencesAt(pth)
}

// NewPreferencesAt is like NewPreferences but values are loaded from the
// named file.
func NewPreferencesAt(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.setHooks()
	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	for _, v := range []struct {
		key  string
		pref prefs.Pref
	}{
		{"session.instances", &p.Instances},
		{"session.linkmode", &p.LinkMode},
		{"session.link.address", &p.LinkAddress},
		{"session.link.port", &p.LinkPort},
		{"session.link.log", &p.LinkLog},
		{"session.legacyresume", &p.LegacyResume},
		{"audio.resampler", &p.Resampler},
		{"audio.source", &p.AudioSource},
		{"video.blend", &p.Blend},
		{"video.response", &p.Response},
		{"video.pixelformat", &p.PixelFormat},
		{"hardware.randstate", &p.RandomState},
	} {
		if err := p.dsk.Add(v.key, v.pref); err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

func (p *Preferences) setHooks() {
	p.Instances.SetHookPre(func(v prefs.Value) error {
		if n, ok := v.(int); ok && (n < 1 || n > MaxInstances) {
			return curated.Errorf(InvalidValue, "instances", fmt.Sprintf("must be between 1 and %d", MaxInstances))
		}
		return nil
	})
	p.LinkMode.SetHookPre(func(v prefs.Value) error {
		if _, err := link.ParseMode(fmt.Sprintf("%v", v)); err != nil {
			return curated.Errorf(InvalidValue, "link mode", err)
		}
		return nil
	})
	p.LinkPort.SetHookPre(func(v prefs.Value) error {
		if n, ok := v.(int); ok && (n < 0 || n > 65535) {
			return curated.Errorf(InvalidValue, "link port", n)
		}
		return nil
	})
	p.Resampler.SetHookPre(func(v prefs.Value) error {
		if _, err := audio.ParseKind(fmt.Sprintf("%v", v)); err != nil {
			return curated.Errorf(InvalidValue, "resampler", err)
		}
		return nil
	})
	p.AudioSource.SetHookPre(func(v prefs.Value) error {
		if _, err := audio.ParseSource(fmt.Sprintf("%v", v)); err != nil {
			return curated.Errorf(InvalidValue, "audio source", err)
		}
		return nil
	})
	p.Blend.SetHookPre(func(v prefs.Value) error {
		if _, err := compositor.ParseBlendMode(fmt.Sprintf("%v", v)); err != nil {
			return curated.Errorf(InvalidValue, "blend", err)
		}
		return nil
	})
	p.Response.SetHookPre(func(v prefs.Value) error {
		if f, ok := v.(float64); ok && (f < 0.0 || f >= 1.0) {
			return curated.Errorf(InvalidValue, "response", f)
		}
		return nil
	})
	p.PixelFormat.SetHookPre(func(v prefs.Value) error {
		if _, err := compositor.ParsePixelFormat(fmt.Sprintf("%v", v)); err != nil {
			return curated.Errorf(InvalidValue, "pixel format", err)
		}
		return nil
	})
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Instances.Set(2)
	p.LinkMode.Set(link.LocalPair.String())
	p.LinkAddress.Set("127.0.0.1")
	p.LinkPort.Set(link.DefaultPort)
	p.LinkLog.Set(false)
	p.LegacyResume.Set(false)
	p.Resampler.Set(audio.Sinc.String())
	p.AudioSource.Set(audio.Canonical.String())
	p.Blend.Set(compositor.BlendNone.String())
	p.Response.Set(compositor.DefaultResponse)
	p.PixelFormat.Set(compositor.XRGB8888.String())
	p.RandomState.Set(false)
}

// Reset all preferences to the default values.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return nil
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Link returns the link mode. An invalid preference value can not be stored so
// an error from parsing is impossible.
func (p *Preferences) Link() link.Mode {
	m, _ := link.ParseMode(p.LinkMode.String())
	return m
}

// NetworkConfig returns the configuration for a network link.
func (p *Preferences) NetworkConfig() link.NetworkConfig {
	return link.NetworkConfig{
		Mode:       p.Link(),
		Address:    p.LinkAddress.String(),
		Port:       p.LinkPort.Get().(int),
		LogTraffic: p.LinkLog.Get().(bool),
	}
}

// ResamplerKind returns the resampler kind.
func (p *Preferences) ResamplerKind() audio.Kind {
	k, _ := audio.ParseKind(p.Resampler.String())
	return k
}

// Source returns the audio source.
func (p *Preferences) Source() audio.Source {
	s, _ := audio.ParseSource(p.AudioSource.String())
	return s
}

// BlendMode returns the blend mode.
func (p *Preferences) BlendMode() compositor.BlendMode {
	b, _ := compositor.ParseBlendMode(p.Blend.String())
	return b
}

// Format returns the pixel format.
func (p *Preferences) Format() compositor.PixelFormat {
	f, _ := compositor.ParsePixelFormat(p.PixelFormat.String())
	return f
}
