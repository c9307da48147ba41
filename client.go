// Package mcd is the client-side façade for the Multi-Core Debug RPC
// protocol: one process-wide session over a single transport
// connection, driven by a single thread. Every exported method
// corresponds to one mcd_*_f entry point of the MCD API.
package mcd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/lauterbach-mcd/mcd-client/internal/adapter"
	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/coredb"
	"github.com/lauterbach-mcd/mcd-client/internal/logging"
	"github.com/lauterbach-mcd/mcd-client/internal/metrics"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/telemetry"
	"github.com/lauterbach-mcd/mcd-client/internal/transport"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// Config names the server's TCP endpoint.
type Config struct {
	Host string
	Port uint32
}

// DefaultConfig returns the well-known local development endpoint.
func DefaultConfig() Config {
	return Config{Host: constants.DefaultHost, Port: constants.DefaultPort}
}

// ParseConfig parses a "<host>:<port>" endpoint string, e.g. what a
// user would pass on a command line or in an environment variable.
func ParseConfig(s string) (Config, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Config{}, NewError("parse-config", CodeInvalidParameter, err.Error())
	}
	port, err := strconv.ParseUint(portStr, 10, 32)
	if err != nil {
		return Config{}, NewError("parse-config", CodeInvalidParameter, "bad port: "+portStr)
	}
	return Config{Host: host, Port: uint32(port)}, nil
}

// TransportFactory builds a Transport bound to an endpoint. Swap in
// transport.NewJSONTransport for the line-delimited JSON wire instead
// of the default binary one.
type TransportFactory func(transport.Config) transport.Transport

// ServerHandle is the client-visible handle for one open server
// session (open_server/close_server).
type ServerHandle struct {
	ID     uuid.UUID
	UID    uint32
	Host   string
	Config string
}

// CoreHandle is the client-visible handle for one open core
// (open_core/close_core), carrying its populated core database.
type CoreHandle struct {
	ID       uuid.UUID
	UID      uint32
	ConnInfo wire.ConnInfo
	DB       *coredb.CoreDB
}

// Client is the MCD API façade.
type Client struct {
	cfg          Config
	newTransport TransportFactory
	tr           transport.Transport

	metrics   *metrics.Metrics
	telemetry *telemetry.Provider
	logger    *logging.Logger

	server *ServerHandle
	cores  map[uint32]*CoreHandle

	// powerDown latches once any call observes the target going away;
	// a subsequent CloseCore then becomes a best-effort local teardown.
	powerDown bool

	trigInfoCache map[uint32][]rpc.TrigTypeInfo
}

// ClientOption customizes NewClient.
type ClientOption func(*Client)

// WithTransportFactory overrides the default binary transport, e.g.
// to use transport.NewJSONTransport.
func WithTransportFactory(f TransportFactory) ClientOption {
	return func(c *Client) { c.newTransport = f }
}

// WithMetrics attaches a Metrics instance registered against the
// caller's own prometheus.Registerer instead of a private one.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithTelemetry attaches a tracer provider; every RPC then opens a
// span named "mcd.rpc.<opcode>".
func WithTelemetry(p *telemetry.Provider) ClientOption {
	return func(c *Client) { c.telemetry = p }
}

// WithLogger overrides the package-default logger.
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a façade bound to cfg's host/port. The transport
// is not dialed until OpenServer.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:           cfg,
		newTransport:  func(tc transport.Config) transport.Transport { return transport.NewBinaryTransport(tc) },
		logger:        logging.Default(),
		cores:         make(map[uint32]*CoreHandle),
		trigInfoCache: make(map[uint32][]rpc.TrigTypeInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	return c
}

// callOn issues one RPC over tr: encode, send, receive, with metrics
// and an optional trace span.
func (c *Client) callOn(ctx context.Context, tr transport.Transport, op constants.Opcode, body []byte) ([]byte, error) {
	if tr == nil {
		return nil, fmt.Errorf("mcd: transport not connected")
	}
	if c.telemetry != nil {
		var span trace.Span
		ctx, span = c.telemetry.StartRPCSpan(ctx, op.String())
		defer span.End()
	}
	start := time.Now()
	frame, err := rpc.EncodeRequest(op, body)
	if err != nil {
		c.metrics.RecordCall(op.String(), start, string(CodeMarshal))
		setLastErrorStatic(CodeMarshal)
		return nil, err
	}
	if err := tr.Send(ctx, frame); err != nil {
		c.metrics.RecordCall(op.String(), start, string(CodeConnection))
		setLastErrorCustom(CodeConnection, err.Error())
		if errors.Is(err, transport.ErrPowerDown) {
			c.powerDown = true
		}
		return nil, err
	}
	resp, err := tr.Receive(ctx)
	if err != nil {
		c.metrics.RecordCall(op.String(), start, string(CodeConnection))
		setLastErrorCustom(CodeConnection, err.Error())
		if errors.Is(err, transport.ErrPowerDown) {
			c.powerDown = true
		}
		return nil, err
	}
	c.metrics.RecordCall(op.String(), start, "")
	return resp, nil
}

// call issues one RPC over the client's own open-server connection.
func (c *Client) call(ctx context.Context, op constants.Opcode, body []byte) ([]byte, error) {
	return c.callOn(ctx, c.tr, op, body)
}

// requireServer fails fast with CodeServerNotOpen the way every
// façade call that needs a live session does before it ever touches
// the wire.
func (c *Client) requireServer(op string) error {
	if c.server == nil {
		setLastErrorStatic(CodeServerNotOpen)
		return NewError(op, CodeServerNotOpen, "no server open")
	}
	return nil
}

// serverReportedError records the ask-server sentinel and returns the
// façade-level error a caller sees; QryErrorInfo resolves the detail.
func (c *Client) serverReportedError(op string, coreUID uint32) error {
	hasCore := coreUID != 0
	setLastErrorAskServer(coreUID, hasCore)
	if hasCore {
		return NewErrorWithOp(op, coreUID, CodeServerReported, "server reported error; call QryErrorInfo")
	}
	return NewError(op, CodeServerReported, "server reported error; call QryErrorInfo")
}

// Initialize implements mcd_initialize_f. It never issues an RPC and
// stores nothing: it always returns OK with an ImplVersionInfo that
// echoes the requested major/minor and the vendor "mcd-client". The
// requested version is not compared against any client version, here
// or in OpenServer.
func (c *Client) Initialize(versionMajor, versionMinor uint16) (rpc.ImplVersionInfo, error) {
	setLastErrorOK()
	return rpc.ImplVersionInfo{VersionMajor: versionMajor, VersionMinor: versionMinor, Vendor: "mcd-client"}, nil
}

// Exit implements mcd_exit_f: it best-effort notifies the server, then
// tears down the local session regardless of whether that notify
// succeeds.
func (c *Client) Exit() error {
	if c.tr != nil {
		_ = c.tr.Send(context.Background(), rpc.EncodeExit())
		_ = c.tr.Close()
		c.tr = nil
	}
	c.server = nil
	c.cores = make(map[uint32]*CoreHandle)
	setLastErrorOK()
	return nil
}

// serverCaller adapts the façade's own ExecuteTxList into the
// adapter.ServerCaller interface adapters use for re-entrant reads
// during YieldServerRequest.
type serverCaller struct{ c *Client }

func (s serverCaller) ExecuteTxList(coreUID uint32, tx []wire.Transaction) (wire.TxList, error) {
	body := rpc.MarshalExecuteTxListArgs(rpc.ExecuteTxListArgs{CoreUID: coreUID, TxList: wire.TxList{Tx: tx}})
	respBody, err := s.c.call(context.Background(), constants.OpExecuteTxList, body)
	if err != nil {
		return wire.TxList{}, err
	}
	res, err := rpc.UnmarshalExecuteTxListResult(respBody)
	if err != nil {
		return wire.TxList{}, err
	}
	if res.Ret != wire.ReturnOK {
		return wire.TxList{}, s.c.serverReportedError("execute-txlist", coreUID)
	}
	return res.TxList, nil
}

func (c *Client) serverCallerFor(*CoreHandle) adapter.ServerCaller { return serverCaller{c: c} }

// maxProbeServers bounds how many entries one discovery probe asks
// the server to report.
const maxProbeServers = 16

// ProbeServers queries the default endpoint for reachable servers
// without opening a session: it dials 127.0.0.1:1235 on a transient
// connection, issues one qry-servers RPC and returns the reported
// entries. Useful before OpenServer when the caller doesn't know
// whether (or which) server is up; it does not require or affect an
// open server session.
func ProbeServers(ctx context.Context, timeout time.Duration) ([]wire.ServerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := NewClient(DefaultConfig())
	_, servers, err := c.QryServers(ctx, constants.DefaultHost, false, 0, maxProbeServers)
	if err != nil {
		return nil, WrapError("probe-servers", err)
	}
	return servers, nil
}
