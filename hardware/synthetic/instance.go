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

package synthetic

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
)

const (
	wramSize = 0x2000
	sramSize = 0x2000
	rtcSize  = 8

	// number of ticks between transfers started by an instance that is the
	// master of a link. halved in double speed mode
	serialInterval = 4096

	// rtc is advanced once every rtcFrames frames
	rtcFrames = 60
)

var stateMagic = [4]byte{'L', 'S', 'G', 'B'}

const stateVersion = 1

// size of the fixed length part of the serialised state
const stateHeaderSize = 27

// DefaultPalette is the palette used by an instance if SetPalette() is never
// called. The values are in XRGB8888 format.
var DefaultPalette = [4]hardware.Pixel{0xffffff, 0xaaaaaa, 0x555555, 0x000000}

// Instance is the synthetic implementation of hardware.Instance.
type Instance struct {
	env *environment.Environment
	id  int

	rom   []byte
	flags hardware.LoadFlags
	cgb   bool
	seed  uint8

	palette [4]hardware.Pixel

	// the cable the instance is attached to. nil if there is no cable or if
	// the cable has been closed
	serial link.SerialIO

	// position in the instance's own video frame
	frameTick int
	frame     uint32

	// position in the square wave
	phase int

	// serial data register
	sb uint8

	// a master instance has sent a byte and is waiting for the reply
	awaiting    bool
	serialTimer int
	transfers   uint32

	wram []byte
	sram []byte
	rtc  []byte

	// cheats are only set for the canonical instance
	genie []geniePatch
	shark []sharkPatch
}

// NewInstance is the preferred method of initialisation for the Instance
// type. The environment must not be nil.
func NewInstance(id int, env *environment.Environment) *Instance {
	return &Instance{
		env:     env,
		id:      id,
		palette: DefaultPalette,
		wram:    make([]byte, wramSize),
	}
}

// NewFactory returns a hardware.Factory that creates synthetic instances in
// the environment. The instance for the canonical slot is a Canonical
// instance.
func NewFactory(env *environment.Environment) hardware.Factory {
	return func(id int, canonical bool) (hardware.Instance, error) {
		if canonical {
			return NewCanonical(id, env), nil
		}
		return NewInstance(id, env), nil
	}
}

func (ins *Instance) String() string {
	if ins.rom == nil {
		return fmt.Sprintf("instance %d: no rom", ins.id)
	}
	mode := "dmg"
	if ins.cgb {
		mode = "cgb"
	}
	return fmt.Sprintf("instance %d: %s (%s)", ins.id, Title(ins.rom), mode)
}

// ID implements the hardware.Instance interface.
func (ins *Instance) ID() int {
	return ins.id
}

// SetPalette implements the hardware.Palette interface.
func (ins *Instance) SetPalette(shades [4]hardware.Pixel) {
	ins.palette = shades
}

// Load implements the hardware.Instance interface.
func (ins *Instance) Load(rom []byte, flags hardware.LoadFlags) error {
	if err := validate(rom); err != nil {
		return err
	}

	ins.rom = slices.Clone(rom)
	ins.flags = flags
	ins.seed = rom[headerChecksum]

	ins.cgb = rom[headerCGB]&0x80 == 0x80 || flags&(hardware.ForceCGB|hardware.GBACGB) != 0
	if flags&hardware.ForceDMG == hardware.ForceDMG {
		ins.cgb = false
	}

	ins.sram = nil
	if rom[headerRAMSize] != 0x00 {
		ins.sram = make([]byte, sramSize)
	}

	ins.rtc = nil
	switch rom[headerCartType] {
	case cartMBC3TimerBattery, cartMBC3TimerRAMBattery:
		ins.rtc = make([]byte, rtcSize)
	}

	ins.Reset()

	logger.Log(ins.env, "synthetic", ins)

	return nil
}

// Reset implements the hardware.Instance interface. Cartridge RAM and the real
// time clock are not changed.
func (ins *Instance) Reset() {
	// the start of the instance's frame never coincides with the start of a
	// line
	ins.frameTick = 1 + (int(ins.seed)*97+ins.id*1024)%(hardware.TicksPerFrame-1)
	if ins.frameTick%hardware.TicksPerLine == 0 {
		ins.frameTick++
	}
	ins.frame = 0
	ins.phase = 0
	ins.sb = 0
	ins.awaiting = false
	ins.serialTimer = 0
	ins.transfers = 0

	clear(ins.wram)
	if ins.env.Prefs.RandomState.Get().(bool) {
		ins.env.Random.Fill(ins.wram)
	}
}

// NativeSampleRate implements the hardware.Instance interface.
func (ins *Instance) NativeSampleRate() float64 {
	return hardware.NativeSampleRate
}

// RunFor implements the hardware.Instance interface.
func (ins *Instance) RunFor(video []hardware.Pixel, stride int, sound []uint32, ticks int) (hardware.RunResult, error) {
	if ins.rom == nil {
		return hardware.RunResult{}, curated.Errorf(hardware.RunError, "no rom")
	}
	if ticks < 0 {
		return hardware.RunResult{}, curated.Errorf(hardware.RunError, fmt.Sprintf("negative tick count (%d)", ticks))
	}
	if len(sound) < ticks {
		return hardware.RunResult{}, curated.Errorf(hardware.RunError, fmt.Sprintf("sound buffer too small (%d < %d)", len(sound), ticks))
	}
	if video != nil {
		if stride < hardware.ScreenWidth || len(video) < (hardware.ScreenHeight-1)*stride+hardware.ScreenWidth {
			return hardware.RunResult{}, curated.Errorf(hardware.RunError, "video buffer too small")
		}
	}

	ins.checkSerial()

	for t := range ticks {
		sound[t] = ins.sample()
		ins.stepSerial()

		ins.frameTick++
		if ins.frameTick >= hardware.TicksPerFrame {
			ins.frameTick = 0
			ins.endFrame(video, stride)
			if t+1 < ticks {
				return hardware.PausedResult(t + 1), nil
			}
		}
	}

	return hardware.CompletedResult(ticks), nil
}

func (ins *Instance) sample() uint32 {
	half := 512 + int(ins.sb&0x3f)*16

	ins.phase++
	if ins.phase >= half*2 {
		ins.phase = 0
	}

	amp := int16(0x0800 + int(ins.seed&0x0f)<<6)
	if ins.phase >= half {
		amp = -amp
	}

	return hardware.Join(amp, amp/2)
}

func (ins *Instance) endFrame(video []hardware.Pixel, stride int) {
	if video != nil {
		for y := range hardware.ScreenHeight {
			row := video[y*stride : y*stride+hardware.ScreenWidth]
			for x := range row {
				var shade uint32
				if y < 8 {
					// the top of the screen shows the serial register
					shade = uint32(ins.sb>>(7-x/20)) & 0x01 * 3
				} else {
					shade = ((uint32(x)+ins.frame)>>3 ^ uint32(y)>>3 ^ uint32(ins.seed) ^ uint32(ins.id)) & 0x03
				}
				row[x] = ins.palette[shade]
			}
		}
	}

	ins.frame++

	ins.wram[ins.frame%wramSize] = uint8(ins.frame)
	if len(ins.sram) > 0 {
		ins.sram[ins.frame%sramSize] = ins.sb
	}
	if ins.rtc != nil && ins.frame%rtcFrames == 0 {
		binary.LittleEndian.PutUint64(ins.rtc, binary.LittleEndian.Uint64(ins.rtc)+1)
	}

	ins.applyShark()
}

// StateSize implements the hardware.Instance interface.
func (ins *Instance) StateSize() int {
	if ins.rom == nil {
		return 0
	}
	return stateHeaderSize + len(ins.wram) + len(ins.sram) + len(ins.rtc)
}

// SaveState implements the hardware.Instance interface.
func (ins *Instance) SaveState(buf []byte) error {
	if len(buf) != ins.StateSize() {
		return curated.Errorf(hardware.StateMismatch, ins.StateSize(), len(buf))
	}

	b := buf[:0]
	b = append(b, stateMagic[:]...)
	b = append(b, stateVersion)
	b = binary.LittleEndian.AppendUint32(b, uint32(ins.frameTick))
	b = binary.LittleEndian.AppendUint32(b, ins.frame)
	b = binary.LittleEndian.AppendUint32(b, uint32(ins.phase))
	b = append(b, ins.sb)
	if ins.awaiting {
		b = append(b, 0x01)
	} else {
		b = append(b, 0x00)
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(ins.serialTimer))
	b = binary.LittleEndian.AppendUint32(b, ins.transfers)
	b = append(b, ins.wram...)
	b = append(b, ins.sram...)
	_ = append(b, ins.rtc...)

	return nil
}

// LoadState implements the hardware.Instance interface.
func (ins *Instance) LoadState(buf []byte) error {
	if len(buf) != ins.StateSize() {
		return curated.Errorf(hardware.StateMismatch, ins.StateSize(), len(buf))
	}
	if [4]byte(buf[:4]) != stateMagic {
		return curated.Errorf(hardware.InvalidState, "not a synthetic instance state")
	}
	if buf[4] != stateVersion {
		return curated.Errorf(hardware.InvalidState, fmt.Sprintf("unsupported version (%d)", buf[4]))
	}

	frameTick := int(binary.LittleEndian.Uint32(buf[5:]))
	if frameTick >= hardware.TicksPerFrame {
		return curated.Errorf(hardware.InvalidState, fmt.Sprintf("frame position out of range (%d)", frameTick))
	}

	ins.frameTick = frameTick
	ins.frame = binary.LittleEndian.Uint32(buf[9:])
	ins.phase = int(binary.LittleEndian.Uint32(buf[13:]))
	ins.sb = buf[17]
	ins.awaiting = buf[18] == 0x01
	ins.serialTimer = int(binary.LittleEndian.Uint32(buf[19:]))
	ins.transfers = binary.LittleEndian.Uint32(buf[23:])

	b := buf[stateHeaderSize:]
	b = b[copy(ins.wram, b):]
	b = b[copy(ins.sram, b):]
	copy(ins.rtc, b)

	return nil
}

// Read returns the value at the address as seen by the instance's CPU. ROM
// reads are subject to Game Genie patches. Unmapped addresses read as 0xff.
func (ins *Instance) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		if int(address) >= len(ins.rom) {
			return 0xff
		}
		v := ins.rom[address]
		for _, p := range ins.genie {
			if p.address == address && (!p.compare || p.old == v) {
				return p.value
			}
		}
		return v
	case address >= 0xa000 && address < 0xc000:
		if ins.sram == nil {
			return 0xff
		}
		return ins.sram[address-0xa000]
	case address >= 0xc000 && address < 0xe000:
		return ins.wram[address-0xc000]
	}
	return 0xff
}

// Transfers returns the number of completed serial transfers since the last
// reset.
func (ins *Instance) Transfers() int {
	return int(ins.transfers)
}

// Serial returns the value of the serial data register.
func (ins *Instance) Serial() uint8 {
	return ins.sb
}
