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

// Package comparison facilitates the running of a comparison session
// alongside the main session.
//
// The two sessions run their frames concurrently. When both have completed
// the frame, the video and audio output of the sessions are compared. The
// main session is a "driver" and the comparison session follows it.
//
// The comparison session shares the preferences of the main session. Network
// link modes are not useful for comparison because the two sessions can not
// both use the same network address.
//
// The comparison will produce two streams of images. The first is the
// frame-by-frame video output of the comparison session; and the second stream
// shows the differences (as white pixels) between corresponding frames from
// the two sessions. Each video stream has a one frame buffer.
package comparison
