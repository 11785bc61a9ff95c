// internal/driver/sik/fake/radio.go
package fake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"sik-config/internal/model"
	"sik-config/internal/protocol"
)

// guardTime is the silence the firmware requires around "+++"
const guardTime = time.Second

var registerNames = map[int]string{
	0:  "FORMAT",
	1:  "SERIAL_SPEED",
	2:  "AIR_SPEED",
	3:  "NETID",
	4:  "TXPOWER",
	5:  "ECC",
	6:  "MAVLINK",
	7:  "OPPRESEND",
	8:  "MIN_FREQ",
	9:  "MAX_FREQ",
	10: "NUM_CHANNELS",
	11: "DUTY_CYCLE",
	12: "LBT_RSSI",
	13: "MANCHESTER",
	14: "RTSCTS",
	15: "MAX_WINDOW",
}

// DefaultRegisters returns factory EEPROM values
func DefaultRegisters() map[int]int {
	return map[int]int{
		0: 25, 1: 57, 2: 64, 3: 25, 4: 20, 5: 0, 6: 1, 7: 0,
		8: 915000, 9: 928000, 10: 50, 11: 100, 12: 0, 13: 0, 14: 0, 15: 131,
	}
}

// Node is the EEPROM state of one radio in the pair
type Node struct {
	Registers       map[int]int
	Persisted       map[int]int
	Reboots         int
	PersistCount    int
	RejectRegisters map[int]bool
	RejectPersist   bool
}

// NewNode returns a node holding factory defaults
func NewNode() *Node {
	return &Node{
		Registers:       DefaultRegisters(),
		Persisted:       DefaultRegisters(),
		RejectRegisters: map[int]bool{},
	}
}

func (n *Node) reboot() {
	n.Reboots++
	n.Registers = copyRegisters(n.Persisted)
}

// Dump renders the registers the way ATI5 prints them
func (n *Node) Dump() string {
	ids := make([]int, 0, len(n.Registers))
	for id := range n.Registers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		name, ok := registerNames[id]
		if !ok {
			name = "UNKNOWN"
		}
		fmt.Fprintf(&b, "S%d:%s=%d\r\n", id, name, n.Registers[id])
	}
	return b.String()
}

func copyRegisters(src map[int]int) map[int]int {
	dst := make(map[int]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Radio simulates a SiK modem behind a protocol.Transport. Data is only understood when
// the transport baud equals LinkBaud, or is one of AcceptBauds when that is set; command mode is entered by "+++" with a second of
// silence on each side and confirmed with AckFormat.
type Radio struct {
	*Node

	// Remote answers RT commands. Nil means the link to the far radio is down.
	Remote *Node

	LinkBaud  int
	AckFormat string
	Banner    string
	OpenErr   error
	WriteErr  error
	CloseErr  error

	// AcceptBauds replaces LinkBaud as the set of rates the radio understands
	AcceptBauds map[int]bool

	// ChunkSize limits how much one ReadAvailable returns; 0 returns everything.
	ChunkSize int

	// Chatter is appended to the input on every poll, simulating a radio that never
	// goes quiet.
	Chatter []byte

	clock *Clock

	mu            sync.Mutex
	open          bool
	baud          int
	commandMode   bool
	escapePending bool
	escapeAt      time.Time
	lastWrite     time.Time
	line          []byte
	input         []byte
	frames        []string
	opens         int
	closes        int
	flushes       int
}

var _ protocol.Transport = (*Radio)(nil)

// NewRadio returns a local radio with factory registers listening at linkBaud
func NewRadio(clock *Clock, linkBaud int) *Radio {
	return &Radio{
		Node:      NewNode(),
		LinkBaud:  linkBaud,
		AckFormat: "OK",
		Banner:    "SiK 2.6 on HM-TRP",
		clock:     clock,
		baud:      linkBaud,
	}
}

func (r *Radio) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.OpenErr != nil {
		return r.OpenErr
	}
	if !r.open {
		r.open = true
		r.opens++
	}
	return nil
}

func (r *Radio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		r.open = false
		r.closes++
		r.input = nil
	}
	return r.CloseErr
}

func (r *Radio) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

func (r *Radio) SetBaudRate(baud int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		return errors.New("cannot change baud rate while open")
	}
	r.baud = baud
	return nil
}

func (r *Radio) BaudRate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baud
}

func (r *Radio) Write(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return protocol.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.WriteErr != nil {
		return r.WriteErr
	}

	now := r.clock.Now()
	r.frames = append(r.frames, string(data))
	quietBefore := r.lastWrite.IsZero() || now.Sub(r.lastWrite) >= guardTime
	r.lastWrite = now

	if !r.understands(r.baud) {
		r.escapePending = false
		return nil
	}

	if string(data) == "+++" && !r.commandMode {
		r.escapePending = quietBefore
		r.escapeAt = now
		return nil
	}
	r.escapePending = false

	if !r.commandMode {
		// Transparent mode: the bytes go out over the air
		return nil
	}

	r.line = append(r.line, data...)
	for {
		idx := bytes.Index(r.line, []byte("\r\n"))
		if idx < 0 {
			break
		}
		command := string(r.line[:idx])
		r.line = r.line[idx+2:]
		r.execute(command)
	}
	return nil
}

func (r *Radio) understands(baud int) bool {
	if len(r.AcceptBauds) > 0 {
		return r.AcceptBauds[baud]
	}
	return baud == r.LinkBaud
}

// execute runs one command line. Caller holds the mutex.
func (r *Radio) execute(command string) {
	if command == "" {
		return
	}

	// Echo
	r.input = append(r.input, command+"\r\n"...)

	if len(command) < 2 {
		r.reply("ERROR")
		return
	}

	var node *Node
	switch strings.ToUpper(command[:2]) {
	case "AT":
		node = r.Node
	case "RT":
		if r.Remote == nil {
			return
		}
		node = r.Remote
	default:
		r.reply("ERROR")
		return
	}
	local := node == r.Node
	body := command[2:]

	switch {
	case body == "O":
		if local {
			r.commandMode = false
		}
	case body == "I":
		r.reply(r.Banner)
	case body == "I5":
		r.input = append(r.input, node.Dump()...)
	case body == "&W":
		if node.RejectPersist {
			r.reply("ERROR")
			return
		}
		node.Persisted = copyRegisters(node.Registers)
		node.PersistCount++
		r.reply(r.AckFormat)
	case body == "Z":
		node.reboot()
		if local {
			r.commandMode = false
			r.line = nil
			if baud, ok := baudForCode(node.Registers[1]); ok {
				r.LinkBaud = baud
			}
		}
	case strings.HasPrefix(body, "S"):
		r.setRegister(node, body[1:])
	default:
		r.reply("ERROR")
	}
}

func (r *Radio) setRegister(node *Node, assignment string) {
	parts := strings.SplitN(assignment, "=", 2)
	if len(parts) != 2 {
		r.reply("ERROR")
		return
	}
	register, err := strconv.Atoi(parts[0])
	if err != nil {
		r.reply("ERROR")
		return
	}
	value, err := strconv.Atoi(parts[1])
	if err != nil || node.RejectRegisters[register] {
		r.reply("ERROR")
		return
	}
	node.Registers[register] = value
	r.reply(r.AckFormat)
}

func (r *Radio) reply(text string) {
	r.input = append(r.input, text+"\r\n"...)
}

func baudForCode(code int) (int, bool) {
	for _, baud := range model.SerialSpeeds() {
		if c, _ := model.SerialSpeedCode(baud); c == code {
			return baud, true
		}
	}
	return 0, false
}

// settle advances the escape state machine and adds chatter. Caller holds the mutex.
func (r *Radio) settle() {
	if r.escapePending && r.clock.Now().Sub(r.escapeAt) >= guardTime {
		r.escapePending = false
		r.commandMode = true
		r.line = nil
		r.reply(r.AckFormat)
	}
	r.input = append(r.input, r.Chatter...)
}

func (r *Radio) BytesAvailable() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return 0, protocol.ErrNotOpen
	}
	r.settle()
	return len(r.input), nil
}

func (r *Radio) ReadAvailable() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return nil, protocol.ErrNotOpen
	}
	r.settle()

	n := len(r.input)
	if r.ChunkSize > 0 && n > r.ChunkSize {
		n = r.ChunkSize
	}
	data := append([]byte(nil), r.input[:n]...)
	r.input = r.input[n:]
	return data, nil
}

func (r *Radio) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return protocol.ErrNotOpen
	}
	r.input = nil
	r.flushes++
	return nil
}

func (r *Radio) GetProtocolType() protocol.ConnectionType {
	return protocol.ConnectionTypeSerial
}

func (r *Radio) GetStats() protocol.ProtocolStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.ProtocolStats{
		OpenCount:   int64(r.opens),
		IsConnected: r.open,
	}
}

// Inject queues bytes as if the radio had sent them
func (r *Radio) Inject(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input = append(r.input, data...)
}

// InCommandMode reports whether the simulated radio is in its AT shell
func (r *Radio) InCommandMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commandMode
}

// Frames returns every write, in order
func (r *Radio) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// FramesSince returns the writes after the first n
func (r *Radio) FramesSince(n int) []string {
	frames := r.Frames()
	if n >= len(frames) {
		return nil
	}
	return frames[n:]
}

// CountFrames counts writes equal to frame
func (r *Radio) CountFrames(frame string) int {
	count := 0
	for _, f := range r.Frames() {
		if f == frame {
			count++
		}
	}
	return count
}

// Opens returns how many times the transport was opened
func (r *Radio) Opens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

// Closes returns how many times an open transport was closed
func (r *Radio) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

// Flushes returns how many times Flush was called
func (r *Radio) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}
