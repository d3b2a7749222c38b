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

package audio

import "github.com/lockstepgb/lockstep/hardware"

// decimation resampler averages every DecimationRatio native samples. the
// sum of any incomplete group is carried over to the next push.
type decimation struct {
	fifo
	sumL  int
	sumR  int
	count int
}

func newDecimation() *decimation {
	return &decimation{}
}

func (d *decimation) push(samples []uint32) {
	for _, v := range samples {
		l, r := hardware.Split(v)
		d.sumL += int(l)
		d.sumR += int(r)
		d.count++
		if d.count == DecimationRatio {
			d.out = append(d.out, int16(d.sumL/DecimationRatio), int16(d.sumR/DecimationRatio))
			d.sumL = 0
			d.sumR = 0
			d.count = 0
		}
	}
}

func (d *decimation) reset() {
	d.sumL = 0
	d.sumR = 0
	d.count = 0
	d.out = d.out[:0]
}
