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

// Package compositor places the screens of every instance in a session side
// by side in a single image. Instance zero is on the left.
//
// A temporal blend can be applied to the composite image. The blend modes
// approximate the slow response of the original LCD screens. The mix mode
// averages the current and previous frames. The lcd mode blends up to four
// previous frames with weights that decay exponentially. The lcdfast mode
// keeps a running average of each colour channel.
package compositor
