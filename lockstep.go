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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"github.com/lockstepgb/lockstep/comparison"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/digest"
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/hardware/synthetic"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/modalflag"
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/otoaudio"
	"github.com/lockstepgb/lockstep/paths"
	"github.com/lockstepgb/lockstep/performance"
	"github.com/lockstepgb/lockstep/performance/limiter"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/prefs"
	"github.com/lockstepgb/lockstep/session"
	"github.com/lockstepgb/lockstep/statsview"
	"github.com/lockstepgb/lockstep/version"
	"github.com/lockstepgb/lockstep/wavwriter"
)

// exit values
const (
	exitOK         = 0
	exitParseError = 10
	exitModeError  = 20
)

func main() {
	// #ctrlc cancels the context. the running mode should end as soon as
	// possible
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	prefs, err := preferences.NewPreferences()
	if err != nil {
		fmt.Printf("* error: %v\n", err)
		os.Exit(exitParseError)
	}

	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])

	exitVal := launch(ctx, md, prefs)

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch the mode selected by the command line. returns the value to use with
// os.Exit()
func launch(ctx context.Context, md *modalflag.Modes, prefs *preferences.Preferences) int {
	md.NewMode()
	md.AddSubModes("RUN", "DIGEST", "PERFORMANCE", "COMPARE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitOK

	case modalflag.ParseError:
		fmt.Fprintf(md.Output, "* error: %v\n", err)
		return exitParseError
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md, prefs)

	case "DIGEST":
		err = digestMode(ctx, md, prefs)

	case "PERFORMANCE":
		err = perform(md, prefs)

	case "COMPARE":
		err = compare(ctx, md, prefs)

	case "VERSION":
		fmt.Fprintf(md.Output, "%s\n", version.Version())
	}

	if err != nil {
		fmt.Fprintf(md.Output, "* error in %s mode: %s\n", md.String(), err)
		return exitModeError
	}

	return exitOK
}

// notices from the session are written to the log.
type notices struct{}

func (notices) Notify(notice notifications.Notice) error {
	logger.Log(logger.Allow, "notice", notice)
	return nil
}

// sessionFlags are the flags common to all modes that create a session. the
// default value of each flag is taken from the preferences.
type sessionFlags struct {
	instances *int
	link      *string
	address   *string
	port      *int
	linkLog   *bool
	resampler *string
	source    *string
	blend     *string
	response  *float64
	format    *string
	random    *bool
	legacy    *bool

	// preferences in the format used by prefs.PushCommandLineStack()
	prefs *string

	cgb *bool
	dmg *bool
	log *bool
}

func addSessionFlags(md *modalflag.Modes, prefs *preferences.Preferences) *sessionFlags {
	return &sessionFlags{
		instances: md.AddInt("instances", prefs.Instances.Get().(int), "number of instances (1 or 2)"),
		link:      md.AddString("link", prefs.LinkMode.String(), "link mode: none, local, server, client"),
		address:   md.AddString("address", prefs.LinkAddress.String(), "network link address"),
		port:      md.AddInt("port", prefs.LinkPort.Get().(int), "network link port"),
		linkLog:   md.AddBool("linklog", prefs.LinkLog.Get().(bool), "log every byte sent over the link"),
		resampler: md.AddString("resampler", prefs.Resampler.String(), "audio resampler: sinc, cc"),
		source:    md.AddString("source", prefs.AudioSource.String(), "audio source: canonical, second, mix"),
		blend:     md.AddString("blend", prefs.Blend.String(), "frame blending: none, mix, lcd, lcdfast"),
		response:  md.AddFloat64("response", prefs.Response.Get().(float64), "lcd response for ghosting blend"),
		format:    md.AddString("format", prefs.PixelFormat.String(), "pixel format: xrgb8888, rgb565, abgr1555"),
		random:    md.AddBool("random", prefs.RandomState.Get().(bool), "randomise initial memory"),
		legacy:    md.AddBool("legacyresume", prefs.LegacyResume.Get().(bool), "resume paused instances the legacy way"),
		prefs:     md.AddString("prefs", "", "preferences for this session (key::value; key::value)"),
		cgb:       md.AddBool("cgb", false, "force colour hardware"),
		dmg:       md.AddBool("dmg", false, "force monochrome hardware"),
		log:       md.AddBool("log", false, "echo log to output"),
	}
}

// apply the flag values to the preferences. only flags that have been set
// on the command line are applied. values in the -prefs flag are applied
// first.
func (f *sessionFlags) apply(md *modalflag.Modes, pref *preferences.Preferences) error {
	if *f.prefs != "" {
		prefs.PushCommandLineStack(*f.prefs)
		err := pref.Load()
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "prefs", "unused preferences: %s", unused)
		}
		if err != nil && !curated.Is(err, prefs.NoPrefsFile) {
			return err
		}
	}

	set := map[string]struct {
		set func(prefs.Value) error
		val prefs.Value
	}{
		"instances":    {pref.Instances.Set, *f.instances},
		"link":         {pref.LinkMode.Set, *f.link},
		"address":      {pref.LinkAddress.Set, *f.address},
		"port":         {pref.LinkPort.Set, *f.port},
		"linklog":      {pref.LinkLog.Set, *f.linkLog},
		"resampler":    {pref.Resampler.Set, *f.resampler},
		"source":       {pref.AudioSource.Set, *f.source},
		"blend":        {pref.Blend.Set, *f.blend},
		"response":     {pref.Response.Set, *f.response},
		"format":       {pref.PixelFormat.Set, *f.format},
		"random":       {pref.RandomState.Set, *f.random},
		"legacyresume": {pref.LegacyResume.Set, *f.legacy},
	}

	var err error
	md.Visit(func(flag string) {
		if v, ok := set[flag]; ok && err == nil {
			err = v.set(v.val)
		}
	})
	if err != nil {
		return err
	}

	if *f.log {
		logger.SetEcho(echoWriter(md.Output), false)
	} else {
		logger.SetEcho(nil, false)
	}

	return nil
}

func (f *sessionFlags) loadFlags() hardware.LoadFlags {
	var flags hardware.LoadFlags
	if *f.cgb {
		flags |= hardware.ForceCGB
	}
	if *f.dmg {
		flags |= hardware.ForceDMG
	}
	return flags
}

// echoWriter adds colour to the log if the output is a terminal.
func echoWriter(output io.Writer) io.Writer {
	if f, ok := output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logger.NewColorizer(output)
	}
	return output
}

// readROM reads the ROM named on the command line. if no ROM is named then a
// synthetic ROM is created.
func readROM(md *modalflag.Modes) ([]byte, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return synthetic.MakeROM(synthetic.ROMOptions{Title: "LOCKSTEP", RAM: true, RTC: true}), nil
	case 1:
		rom, err := os.ReadFile(md.GetArg(0))
		if err != nil {
			return nil, err
		}
		return rom, nil
	}
	return nil, fmt.Errorf("too many arguments for %s mode", md)
}

// newSession creates the main session and loads the ROM.
func newSession(md *modalflag.Modes, prefs *preferences.Preferences, f *sessionFlags, sinks host.Sinks) (*session.Session, error) {
	rom, err := readROM(md)
	if err != nil {
		return nil, err
	}

	env, err := environment.NewEnvironment(environment.MainSession, prefs, notices{})
	if err != nil {
		return nil, err
	}

	sess, err := session.New(env, sinks, synthetic.NewFactory(env))
	if err != nil {
		return nil, err
	}

	err = sess.Load(rom, f.loadFlags())
	if err != nil {
		return nil, err
	}

	return sess, nil
}

func run(ctx context.Context, md *modalflag.Modes, prefs *preferences.Preferences) error {
	md.NewMode()

	f := addSessionFlags(md, prefs)
	frames := md.AddInt("frames", 0, "number of frames to run (0 to run until interrupted)")
	fpsCap := md.AddBool("fpscap", true, "cap fps to the refresh rate")
	wav := md.AddString("wav", "", "record audio to wav file")
	play := md.AddBool("audio", false, "play audio")
	loadState := md.AddString("loadstate", "", "load state of the canonical instance from file")
	saveState := md.AddString("savestate", "", "save state of the canonical instance to file on exit")
	cheat := md.AddString("cheat", "", "game genie or gameshark codes, separated by '+'")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if err := f.apply(md, prefs); err != nil {
		return err
	}

	if stats != nil && *stats {
		statsview.Launch(md.Output)
	}

	sinks := host.NullSinks()

	if *wav != "" {
		aw, err := wavwriter.New(logger.Allow, *wav)
		if err != nil {
			return err
		}
		defer func() {
			if err := aw.Close(); err != nil {
				logger.Log(logger.Allow, "wavwriter", err)
			}
		}()
		sinks.Audio = aw
	} else if *play {
		pl, err := otoaudio.NewPlayer(logger.Allow, 100*time.Millisecond)
		if err != nil {
			return err
		}
		defer pl.Close()
		sinks.Audio = pl
	}

	sess, err := newSession(md, prefs, f, sinks)
	if err != nil {
		return err
	}
	defer sess.Unload()

	if *loadState != "" {
		state, err := os.ReadFile(*loadState)
		if err != nil {
			return err
		}
		if err := sess.Deserialize(state); err != nil {
			return err
		}
	}

	if *cheat != "" {
		if err := sess.SetCheat(*cheat); err != nil {
			return err
		}
	}

	var lim *limiter.FpsLimiter
	if *fpsCap {
		lim = limiter.NewFPSLimiter(hardware.RefreshRate)
		defer lim.Stop()
	}

	for i := 0; *frames == 0 || i < *frames; i++ {
		if ctx.Err() != nil {
			fmt.Fprintf(md.Output, "interrupted after %d frames\n", i)
			break
		}

		if lim != nil {
			lim.Wait()
		}
		if err := sess.RunFrame(); err != nil {
			return err
		}
	}

	if *saveState != "" {
		state := make([]byte, sess.StateSize())
		if err := sess.Serialize(state); err != nil {
			return err
		}
		if err := os.WriteFile(*saveState, state, 0o600); err != nil {
			return err
		}
	}

	fmt.Fprintf(md.Output, "%s\n", sess)
	fmt.Fprintf(md.Output, "link: %s\n", sess.LinkStats())

	return prefs.Save()
}

func digestMode(ctx context.Context, md *modalflag.Modes, prefs *preferences.Preferences) error {
	md.NewMode()

	f := addSessionFlags(md, prefs)
	frames := md.AddInt("frames", 60, "number of frames to run")
	snapshot := md.AddBool("snapshot", false, "save a state file after the final frame")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if err := f.apply(md, prefs); err != nil {
		return err
	}

	video := digest.NewVideo()
	audio := digest.NewAudio()

	sess, err := newSession(md, prefs, f, host.Sinks{Audio: audio, Video: video})
	if err != nil {
		return err
	}
	defer sess.Unload()

	for range *frames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := sess.RunFrame(); err != nil {
			return err
		}
	}

	fmt.Fprintf(md.Output, "video: %s\n", video.Hash())
	fmt.Fprintf(md.Output, "audio: %s\n", audio.Hash())

	if *snapshot {
		state := make([]byte, sess.StateSize())
		if err := sess.Serialize(state); err != nil {
			return err
		}
		fn, err := paths.ResourcePath("snapshots", paths.UniqueFilename("state", "lockstep"))
		if err != nil {
			return err
		}
		if err := os.WriteFile(fn, state, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(md.Output, "state: %s\n", fn)
	}

	return nil
}

func perform(md *modalflag.Modes, prefs *preferences.Preferences) error {
	md.NewMode()

	f := addSessionFlags(md, prefs)
	fpsCap := md.AddBool("fpscap", true, "cap fps to the refresh rate")
	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddString("profile", "none", "run profiler: cpu, mem, trace, all (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if err := f.apply(md, prefs); err != nil {
		return err
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	sess, err := newSession(md, prefs, f, host.NullSinks())
	if err != nil {
		return err
	}
	defer sess.Unload()

	return performance.Check(md.Output, prf, sess, !*fpsCap, *duration)
}

func compare(ctx context.Context, md *modalflag.Modes, prefs *preferences.Preferences) error {
	md.NewMode()

	f := addSessionFlags(md, prefs)
	frames := md.AddInt("frames", 60, "number of frames to compare")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if err := f.apply(md, prefs); err != nil {
		return err
	}

	cmp, err := comparison.NewComparison(prefs, notices{}, synthetic.NewFactory)
	if err != nil {
		return err
	}

	sess, err := newSession(md, prefs, f, cmp.Driver(host.NullSinks()))
	if err != nil {
		return err
	}
	defer sess.Unload()

	rom, err := readROM(md)
	if err != nil {
		return err
	}
	if err := cmp.Load(rom, f.loadFlags()); err != nil {
		return err
	}
	defer cmp.Session.Unload()

	for range *frames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := cmp.RunFrame(sess)
		if err != nil {
			return err
		}
		if res.Differs() {
			logger.Logf(logger.Allow, "compare", "frame %d: %d pixels differ, audio differs: %v",
				sess.State().Frame, res.Pixels, res.Audio)
		}
	}

	fmt.Fprintf(md.Output, "%s\n", cmp)

	return nil
}
