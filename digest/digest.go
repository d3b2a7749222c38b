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

// Package digest is used to create mathematical hashes of the audio and video
// produced by a session. The Audio and Video types implement the host.AudioSink
// and host.VideoSink interfaces respectively.
//
// Hashes are chained. The hash of each frame (or block of audio) includes the
// previous hash value, so the final hash depends on everything that has been
// produced since the last call to ResetDigest().
package digest

// Digest implementations compute a hash of the data they receive.
type Digest interface {
	Hash() string
	ResetDigest()
}
