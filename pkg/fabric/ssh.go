package fabric

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/fabvis/fabvis/pkg/util"
)

const sshDialTimeout = 15 * time.Second

// BastionConfig describes the jump host in front of the testbed's
// management network. Node management addresses are only reachable
// through it.
type BastionConfig struct {
	Host    string // host:port of the bastion
	User    string
	KeyPath string // private key for the bastion hop
}

// Tunnel opens interactive shells on slice nodes by hopping through the
// bastion. Each OpenShell call makes its own pair of SSH connections so
// sessions are independent.
type Tunnel struct {
	bastion BastionConfig
	nodeKey ssh.Signer
}

// NewTunnel loads the node private key and prepares a tunnel. The bastion
// key is loaded per-connection so key rotation does not require a restart.
func NewTunnel(bastion BastionConfig, nodeKeyPath string) (*Tunnel, error) {
	signer, err := loadKey(nodeKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load node key: %w", err)
	}
	return &Tunnel{bastion: bastion, nodeKey: signer}, nil
}

// OpenShell connects to a node's management address through the bastion and
// starts a login shell with a PTY. The returned stream carries the shell's
// stdin and stdout; closing it tears down both SSH connections.
func (t *Tunnel) OpenShell(ctx context.Context, user, mgmtIP string, cols, rows int) (io.ReadWriteCloser, error) {
	if mgmtIP == "" {
		return nil, fmt.Errorf("node has no management address: %w", util.ErrNotProvisioned)
	}

	bastionSigner, err := loadKey(t.bastion.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load bastion key: %w", err)
	}
	bastionConf := &ssh.ClientConfig{
		User:            t.bastion.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(bastionSigner)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshDialTimeout,
	}

	bastion, err := dialContext(ctx, t.bastion.Host, bastionConf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bastion %s: %w", t.bastion.Host, err)
	}

	nodeAddr := net.JoinHostPort(mgmtIP, "22")
	hop, err := bastion.Dial("tcp", nodeAddr)
	if err != nil {
		bastion.Close()
		return nil, fmt.Errorf("failed to reach node at %s via bastion: %w", nodeAddr, err)
	}

	nodeConf := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(t.nodeKey)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshDialTimeout,
	}
	conn, chans, reqs, err := ssh.NewClientConn(hop, nodeAddr, nodeConf)
	if err != nil {
		hop.Close()
		bastion.Close()
		return nil, fmt.Errorf("ssh handshake with node %s failed: %w", nodeAddr, err)
	}
	client := ssh.NewClient(conn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		bastion.Close()
		return nil, fmt.Errorf("failed to open session on %s: %w", nodeAddr, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	if err := session.RequestPty("xterm-256color", rows, cols, modes); err != nil {
		session.Close()
		client.Close()
		bastion.Close()
		return nil, fmt.Errorf("failed to request pty: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		bastion.Close()
		return nil, fmt.Errorf("failed to wire stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		bastion.Close()
		return nil, fmt.Errorf("failed to wire stdout: %w", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		bastion.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	util.WithField("node", nodeAddr).Info("Opened shell session via bastion")
	return &shellStream{
		stdin:   stdin,
		stdout:  stdout,
		session: session,
		client:  client,
		bastion: bastion,
	}, nil
}

// shellStream bundles a remote shell's pipes with the connections that
// carry it so a single Close tears everything down in order.
type shellStream struct {
	stdin   io.WriteCloser
	stdout  io.Reader
	session *ssh.Session
	client  *ssh.Client
	bastion *ssh.Client
}

func (s *shellStream) Read(p []byte) (int, error)  { return s.stdout.Read(p) }
func (s *shellStream) Write(p []byte) (int, error) { return s.stdin.Write(p) }

func (s *shellStream) Close() error {
	s.stdin.Close()
	s.session.Close()
	s.client.Close()
	return s.bastion.Close()
}

// dialContext applies the context's deadline to the TCP dial; the SSH
// handshake itself is bounded by the config timeout.
func dialContext(ctx context.Context, addr string, conf *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: conf.Timeout}
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	conn, chans, reqs, err := ssh.NewClientConn(raw, addr, conf)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return ssh.NewClient(conn, chans, reqs), nil
}

func loadKey(path string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key %s: %w", path, err)
	}
	return signer, nil
}
