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

package notifications

// Notice describes events that somehow change the presentation of the
// session or require the attention of the user.
type Notice string

// List of defined notices.
const (
	// the sinc resampler could not be created and the decimation resampler is
	// being used instead. the sinc resampler will not be tried again for the
	// lifetime of the session
	NotifyResamplerFallback Notice = "NotifyResamplerFallback"

	// the audio sample rate has changed. the host should query the AV
	// information of the session
	NotifySampleRateChanged Notice = "NotifySampleRateChanged"

	// notifications sent by network link transports
	NotifyLinkConnected    Notice = "NotifyLinkConnected"
	NotifyLinkDisconnected Notice = "NotifyLinkDisconnected"
)

// Notify is used for direct communication between the session and the host
// application.
type Notify interface {
	Notify(notice Notice) error
}

// Discard is an implementation of Notify that ignores all notices.
var Discard Notify = discard{}

type discard struct{}

func (discard) Notify(_ Notice) error {
	return nil
}
