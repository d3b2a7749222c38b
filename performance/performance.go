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

package performance

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/performance/limiter"
)

// sentinal error returned by the run loop.
var timedOut = errors.New("performance timed out")

// the time allowed for the frame rate to settle before measurement begins
const leadtime = 2 * time.Second

// Runner is the part of a session used by Check().
type Runner interface {
	RunFrame() error
}

// Check the performance of a session. The session must have a ROM loaded.
//
// The session will run for the specified duration and will create a cpu, memory
// profile, a trace (or a combination of those) as defined by the Profile
// argument. If uncapped is false, the frame rate is limited to the refresh
// rate of the hardware.
func Check(output io.Writer, profile Profile, runner Runner, uncapped bool, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("performance: %w", err)
	}

	return check(output, profile, runner, uncapped, min(leadtime, dur/2), dur)
}

func check(output io.Writer, profile Profile, runner Runner, uncapped bool, lead time.Duration, dur time.Duration) error {
	var lim *limiter.FpsLimiter
	if !uncapped {
		lim = limiter.NewFPSLimiter(hardware.RefreshRate)
		defer lim.Stop()
	}

	var numFrames int

	run := func() error {
		// expires when the leadtime has elapsed and then again when the
		// duration has elapsed
		timerChan := time.After(lead)
		measuring := false

		for {
			select {
			case <-timerChan:
				if measuring {
					return timedOut
				}
				measuring = true
				numFrames = 0
				timerChan = time.After(dur)
			default:
			}

			if lim != nil {
				lim.Wait()
			}

			if err := runner.RunFrame(); err != nil {
				return err
			}
			numFrames++
		}
	}

	err := RunProfiler(profile, "performance", run)
	if err != nil && !errors.Is(err, timedOut) {
		return fmt.Errorf("performance: %w", err)
	}

	fps, accuracy := CalcFPS(numFrames, dur.Seconds())
	fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, dur.Seconds(), accuracy)

	return nil
}
