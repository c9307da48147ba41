// Package fakeserver is an in-process MCD debug server used by the
// integration test suite and the demo CLI's "--fake" mode. It speaks
// the same binary, length-prefixed wire protocol the real client
// expects, simulating a single system/device/core with a small memory
// space and a trigger set, without a real debug target behind it.
package fakeserver

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/logging"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

const shardSize = 4096

// memory is the simulated core's address space: sharded RWMutex
// locking over a flat byte slice, so concurrent client connections can
// read and write disjoint regions without one coarse lock.
type memory struct {
	data   []byte
	shards []sync.RWMutex
}

func newMemory(size int) *memory {
	n := (size + shardSize - 1) / shardSize
	return &memory{data: make([]byte, size), shards: make([]sync.RWMutex, n)}
}

func (m *memory) shardRange(off, length int) (int, int) {
	start := off / shardSize
	end := (off + length - 1) / shardSize
	if end >= len(m.shards) {
		end = len(m.shards) - 1
	}
	return start, end
}

func (m *memory) readAt(p []byte, off int) int {
	if off >= len(m.data) {
		return 0
	}
	if off+len(p) > len(m.data) {
		p = p[:len(m.data)-off]
	}
	s, e := m.shardRange(off, len(p))
	for i := s; i <= e; i++ {
		m.shards[i].RLock()
	}
	n := copy(p, m.data[off:off+len(p)])
	for i := s; i <= e; i++ {
		m.shards[i].RUnlock()
	}
	return n
}

func (m *memory) writeAt(p []byte, off int) int {
	if off >= len(m.data) {
		return 0
	}
	if off+len(p) > len(m.data) {
		p = p[:len(m.data)-off]
	}
	s, e := m.shardRange(off, len(p))
	for i := s; i <= e; i++ {
		m.shards[i].Lock()
	}
	n := copy(m.data[off:off+len(p)], p)
	for i := s; i <= e; i++ {
		m.shards[i].Unlock()
	}
	return n
}

// Server is the fake MCD debug server.
type Server struct {
	ln net.Listener

	mu         sync.Mutex
	conns      map[net.Conn]bool
	nextServer uint32
	nextCore   uint32
	servers    map[uint32]bool
	cores      map[uint32]bool
	mem        *memory
	trigState  wire.TriggerStateInfo
	trigSetIDs []uint32
	coreState  wire.CoreState
	lastTrigID uint32
}

// New starts a fake server listening on 127.0.0.1:0.
func New() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:         ln,
		conns:      make(map[net.Conn]bool),
		nextServer: 1,
		nextCore:   1,
		servers:    make(map[uint32]bool),
		cores:      make(map[uint32]bool),
		mem:        newMemory(64 * 1024),
		coreState:  wire.CoreState{State: wire.CoreStateHalted},
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns "host:port" suitable for a Config/open-server string.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops accepting connections and drops every live one, the way
// a killed server would.
func (s *Server) Close() error {
	err := s.ln.Close()
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[net.Conn]bool)
	s.mu.Unlock()
	return err
}

func (s *Server) acceptLoop() {
	logger := logging.Default().Sub("fakeserver")
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn, logger)
	}
}

func (s *Server) serve(conn net.Conn, logger *logging.Logger) {
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		length := binary.LittleEndian.Uint32(lenBuf[:])
		if length == 0 || length > constants.MaxPacketLength {
			return
		}
		rest := make([]byte, length)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return
		}
		uid := constants.Opcode(rest[0])
		body := rest[1:]

		if uid == constants.OpExit {
			return
		}

		reply := s.dispatch(uid, body)
		if reply == nil {
			continue
		}
		out := make([]byte, 4+len(reply))
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(reply)))
		copy(out[4:], reply)
		if _, err := conn.Write(out); err != nil {
			logger.WithError(err).Warn("write failed")
			return
		}
	}
}

// dispatch decodes one opcode's args and encodes its result, matching
// the byte layout internal/rpc's Marshal*Args / Unmarshal*Result
// functions expect on the real client side. Unhandled opcodes return a
// generic not-implemented result shaped like the simplest *_result
// (ret:u32 only).
func (s *Server) dispatch(op constants.Opcode, body []byte) []byte {
	r := wire.NewReader(body)

	switch op {
	case constants.OpQryServers:
		return s.handleQryServers(r)
	case constants.OpOpenServer:
		return s.handleOpenServer(r)
	case constants.OpCloseServer:
		return s.handleCloseServer(r)
	case constants.OpQrySystems:
		return s.handleQrySystems(r)
	case constants.OpQryDevices:
		return s.handleQryDevices(r)
	case constants.OpQryCores:
		return s.handleQryCores(r)
	case constants.OpOpenCore:
		return s.handleOpenCore(r)
	case constants.OpCloseCore:
		return s.handleCloseCore(r)
	case constants.OpQryMemSpaces:
		return s.handleQryMemSpaces(r)
	case constants.OpQryRegGroups:
		return s.handleQryRegGroups(r)
	case constants.OpQryRegMap:
		return s.handleQryRegMap(r)
	case constants.OpExecuteTxList:
		return s.handleExecuteTxList(r)
	case constants.OpCreateTrig:
		return s.handleCreateTrig(r)
	case constants.OpQryTrigSet:
		return s.handleQryTrigSet(r)
	case constants.OpActivateTrigSet:
		return s.handleActivateTrigSet(r)
	case constants.OpRemoveTrig:
		return s.handleRemoveTrig(r)
	case constants.OpQryState:
		return s.handleQryState(r)
	case constants.OpQryErrorInfo:
		return s.handleQryErrorInfo(r)
	default:
		w := wire.NewWriter(4)
		w.PutU32(uint32(wire.ReturnError))
		return w.Bytes()
	}
}

func okStatus(w *wire.Writer) { w.PutU32(uint32(wire.ReturnOK)) }

func (s *Server) handleQryServers(r *wire.Reader) []byte {
	_, _ = r.GetFixedString(64) // host filter
	_, _ = r.GetBool()          // running filter
	startIdx, _ := r.GetU32()
	num, _ := r.GetU32()

	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	if num == 0 || startIdx > 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalServerInfo(w, wire.ServerInfo{Server: fixtureSystem(), Running: true})
	return w.Bytes()
}

func (s *Server) handleOpenServer(r *wire.Reader) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextServer
	s.nextServer++
	s.servers[id] = true

	w := wire.NewWriter(64)
	okStatus(w)
	w.PutU32(id)
	w.PutFixedString("127.0.0.1", 64)
	w.PutFixedString("", 256)
	return w.Bytes()
}

func (s *Server) handleCloseServer(r *wire.Reader) []byte {
	id, _ := r.GetU32()
	s.mu.Lock()
	defer s.mu.Unlock()
	w := wire.NewWriter(4)
	if !s.servers[id] {
		w.PutU32(uint32(wire.ReturnError))
		return w.Bytes()
	}
	delete(s.servers, id)
	okStatus(w)
	return w.Bytes()
}

func (s *Server) handleQrySystems(r *wire.Reader) []byte {
	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	startIdx, _ := r.GetU32()
	num, _ := r.GetU32()
	if num == 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	if startIdx > 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalConnInfo(w, fixtureSystem())
	return w.Bytes()
}

func (s *Server) handleQryDevices(r *wire.Reader) []byte {
	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	_, _ = wire.UnmarshalConnInfo(r)
	startIdx, _ := r.GetU32()
	num, _ := r.GetU32()
	if num == 0 || startIdx > 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalConnInfo(w, fixtureDevice())
	return w.Bytes()
}

func (s *Server) handleQryCores(r *wire.Reader) []byte {
	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	_, _ = wire.UnmarshalConnInfo(r)
	startIdx, _ := r.GetU32()
	num, _ := r.GetU32()
	if num == 0 || startIdx > 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalConnInfo(w, fixtureCore())
	return w.Bytes()
}

func (s *Server) handleOpenCore(r *wire.Reader) []byte {
	info, _ := wire.UnmarshalConnInfo(r)

	s.mu.Lock()
	id := s.nextCore
	s.nextCore++
	s.cores[id] = true
	s.mu.Unlock()

	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(id)
	wire.MarshalConnInfo(w, info)
	return w.Bytes()
}

func (s *Server) handleCloseCore(r *wire.Reader) []byte {
	id, _ := r.GetU32()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cores, id)
	w := wire.NewWriter(4)
	okStatus(w)
	return w.Bytes()
}

func (s *Server) handleQryMemSpaces(r *wire.Reader) []byte {
	_, _ = r.GetU32() // core uid
	_, _ = r.GetU32() // start index
	num, _ := r.GetU32()

	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	if num == 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalMemSpace(w, fixtureMemSpace())
	return w.Bytes()
}

func (s *Server) handleQryRegGroups(r *wire.Reader) []byte {
	_, _ = r.GetU32()
	_, _ = r.GetU32()
	num, _ := r.GetU32()

	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(1)
	if num == 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalRegGroup(w, wire.RegGroup{ID: 1, Name: "core-regs"})
	return w.Bytes()
}

func (s *Server) handleQryRegMap(r *wire.Reader) []byte {
	_, _ = r.GetU32() // core uid
	_, _ = r.GetU32() // reg group id
	_, _ = r.GetU32() // start index
	num, _ := r.GetU32()

	w := wire.NewWriter(256)
	okStatus(w)
	w.PutU32(1)
	if num == 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	w.PutU32(1)
	wire.MarshalRegInfo(w, fixtureReg())
	return w.Bytes()
}

func (s *Server) handleExecuteTxList(r *wire.Reader) []byte {
	_, _ = r.GetU32() // core uid
	list, err := wire.UnmarshalTxList(r)
	if err != nil {
		w := wire.NewWriter(4)
		w.PutU32(uint32(wire.ReturnError))
		return w.Bytes()
	}

	numOk := uint32(0)
	for i := range list.Tx {
		t := &list.Tx[i]
		off := int(t.Addr.Address)
		if t.AccessType == wire.AccessWrite {
			n := s.mem.writeAt(t.Data, off)
			t.NumBytesOk = uint32(n)
		} else {
			buf := make([]byte, t.NumBytesReq)
			n := s.mem.readAt(buf, off)
			t.Data = buf
			t.NumBytesOk = uint32(n)
		}
		if t.NumBytesOk == t.NumBytesReq {
			numOk++
		}
	}
	list.NumTxOk = numOk

	w := wire.NewWriter(256)
	okStatus(w)
	wire.MarshalTxList(w, list)
	return w.Bytes()
}

func (s *Server) handleCreateTrig(r *wire.Reader) []byte {
	_, _ = r.GetU32() // core uid
	trig, err := wire.UnmarshalTrigger(r)
	if err != nil {
		w := wire.NewWriter(4)
		w.PutU32(uint32(wire.ReturnError))
		return w.Bytes()
	}

	s.mu.Lock()
	s.lastTrigID++
	id := s.lastTrigID
	s.trigSetIDs = append(s.trigSetIDs, id)
	s.mu.Unlock()

	w := wire.NewWriter(128)
	okStatus(w)
	w.PutU32(id)
	wire.MarshalTrigger(w, trig)
	return w.Bytes()
}

func (s *Server) handleQryTrigSet(r *wire.Reader) []byte {
	_, _ = r.GetU32()
	startIdx, _ := r.GetU32()
	num, _ := r.GetU32()

	s.mu.Lock()
	ids := append([]uint32(nil), s.trigSetIDs...)
	s.mu.Unlock()

	w := wire.NewWriter(64)
	okStatus(w)
	w.PutU32(uint32(len(ids)))
	if num == 0 {
		w.PutU32(0)
		return w.Bytes()
	}
	end := startIdx + num
	if end > uint32(len(ids)) {
		end = uint32(len(ids))
	}
	page := ids[startIdx:end]
	w.PutU32(uint32(len(page)))
	for _, id := range page {
		w.PutU32(id)
	}
	return w.Bytes()
}

func (s *Server) handleActivateTrigSet(r *wire.Reader) []byte {
	s.mu.Lock()
	s.trigState = wire.TriggerStateInfo{Active: true}
	// The fake target "hits" the trigger immediately so integration
	// tests don't need real timing control.
	s.coreState = wire.CoreState{State: wire.CoreStateDebug, TrigID: s.lastTrigID}
	s.mu.Unlock()

	w := wire.NewWriter(4)
	okStatus(w)
	return w.Bytes()
}

func (s *Server) handleRemoveTrig(r *wire.Reader) []byte {
	_, _ = r.GetU32()
	id, _ := r.GetU32()

	s.mu.Lock()
	for i, tid := range s.trigSetIDs {
		if tid == id {
			s.trigSetIDs = append(s.trigSetIDs[:i], s.trigSetIDs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	w := wire.NewWriter(4)
	okStatus(w)
	return w.Bytes()
}

func (s *Server) handleQryState(r *wire.Reader) []byte {
	s.mu.Lock()
	state := s.coreState
	s.mu.Unlock()

	w := wire.NewWriter(300)
	okStatus(w)
	wire.MarshalCoreState(w, state)
	return w.Bytes()
}

func (s *Server) handleQryErrorInfo(r *wire.Reader) []byte {
	w := wire.NewWriter(300)
	wire.MarshalErrorInfo(w, wire.ErrorInfo{ReturnStatus: wire.ReturnOK})
	return w.Bytes()
}

func fixtureSystem() wire.ConnInfo {
	return wire.ConnInfo{Host: "127.0.0.1", SystemName: "fake-system", SystemInstance: "0"}
}

func fixtureDevice() wire.ConnInfo {
	return wire.ConnInfo{Host: "127.0.0.1", SystemName: "fake-system", DeviceName: "fake-device", DeviceType: 1}
}

func fixtureCore() wire.ConnInfo {
	return wire.ConnInfo{Host: "127.0.0.1", SystemName: "fake-system", DeviceName: "fake-device", CoreName: "core0", CoreType: 1}
}

func fixtureMemSpace() wire.MemSpace {
	return wire.MemSpace{
		ID: 1, Name: "RAM", MemType: 1, BitWidth: 32,
		MinAddr: 0, MaxAddr: 0xFFFF,
		SupportedAccessWidthsMask: 0b111,
	}
}

func fixtureReg() wire.RegInfo {
	return wire.RegInfo{ID: 1, GroupID: 1, Name: "r0", RegType: 1, BitWidth: 32, MemSpaceID: 1, AddrOffset: 0x1000}
}
