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

// Package audio converts the native rate audio of the instances in a session
// to a rate suitable for the host.
//
// Native audio is pushed to the Pipeline in bursts of arbitrary length. The
// resampler converts the burst and the output is written to the staging
// buffer. Once per frame the staging buffer is delivered to the host's
// AudioSink.
//
// There are two kinds of resampler. The Sinc resampler is a polyphase
// windowed sinc filter, and is the better of the two. The Decimation
// resampler averages a fixed number of native samples for each output sample.
// It is cheap, and is used automatically if the Sinc resampler can not be
// created.
//
// The staging buffer grows as required and never drops samples. If the host
// accepts fewer samples than it was offered, the maximum size of subsequent
// deliveries is reduced to that amount.
package audio
