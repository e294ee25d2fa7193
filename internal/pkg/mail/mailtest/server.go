// Package mailtest provides an in-process SMTP server for tests.
//
// The server speaks just enough ESMTP for net/smtp and gomail clients:
// EHLO, AUTH PLAIN, MAIL, RCPT, DATA, RSET, NOOP and QUIT. It can listen in
// plain text or behind implicit TLS.
package mailtest

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Message is a mail transaction accepted by the server.
type Message struct {
	// AuthUser is the username that authenticated the session, if any.
	AuthUser string
	// From is the MAIL FROM address.
	From string
	// To lists the RCPT TO addresses.
	To []string
	// Data is the message content with dot-stuffing removed and CRLF
	// converted to LF.
	Data []byte
}

// Server is a fake SMTP server.
type Server struct {
	// Host is the listening IP.
	Host string
	// Port is the listening port.
	Port int

	ln        net.Listener
	username  string
	password  string
	tlsConfig *tls.Config
	rootCAs   *x509.CertPool
	wg        sync.WaitGroup

	mu       sync.Mutex
	messages []Message
	conns    int
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials makes the server accept AUTH PLAIN only for user/pass. The
// default accepts any credentials.
func WithCredentials(user, pass string) Option {
	return func(s *Server) {
		s.username = user
		s.password = pass
	}
}

// WithImplicitTLS serves TLS from the first byte, like port 465.
func WithImplicitTLS() Option {
	return func(s *Server) {
		cert, pool := certificate()
		s.tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
		s.rootCAs = pool
	}
}

// NewServer starts a server on 127.0.0.1 and stops it when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("mailtest: listen: %v", err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	addr, _ := ln.Addr().(*net.TCPAddr)
	s.ln = ln
	s.Host = addr.IP.String()
	s.Port = addr.Port

	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)

	return s
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ClientTLSConfig trusts the server certificate. It is nil for plain servers.
func (s *Server) ClientTLSConfig() *tls.Config {
	if s.rootCAs == nil {
		return nil
	}
	return &tls.Config{RootCAs: s.rootCAs, ServerName: s.Host, MinVersion: tls.VersionTLS12}
}

// Messages returns the accepted messages.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Connections returns the number of accepted connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

// Close stops listening and waits for open sessions to end.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns++
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
			s.session(textproto.NewConn(conn))
		}()
	}
}

type session struct {
	user string
	from string
	to   []string
}

//nolint:gocognit // one case per verb
func (s *Server) session(tp *textproto.Conn) {
	var st session
	reply := func(format string, args ...any) bool {
		return tp.PrintfLine(format, args...) == nil
	}

	if !reply("220 localhost ESMTP mailtest") {
		return
	}

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")

		ok := true
		switch strings.ToUpper(verb) {
		case "EHLO":
			ok = reply("250-localhost") && reply("250-AUTH PLAIN") && reply("250 8BITMIME")
		case "HELO":
			ok = reply("250 localhost")
		case "AUTH":
			user, authErr := s.auth(tp, arg)
			if authErr != nil {
				ok = reply("535 5.7.8 Username and Password not accepted")
				break
			}
			st.user = user
			ok = reply("235 2.7.0 Accepted")
		case "*":
			ok = reply("501 5.5.2 Authentication canceled")
		case "MAIL":
			st.from = address(arg)
			ok = reply("250 2.1.0 OK")
		case "RCPT":
			st.to = append(st.to, address(arg))
			ok = reply("250 2.1.5 OK")
		case "DATA":
			if st.from == "" || len(st.to) == 0 {
				ok = reply("503 5.5.1 Bad sequence of commands")
				break
			}
			if !reply("354 Go ahead") {
				return
			}
			data, readErr := tp.ReadDotBytes()
			if readErr != nil {
				return
			}
			s.mu.Lock()
			s.messages = append(s.messages, Message{AuthUser: st.user, From: st.from, To: st.to, Data: data})
			s.mu.Unlock()
			st = session{user: st.user}
			ok = reply("250 2.0.0 OK queued")
		case "RSET":
			st = session{user: st.user}
			ok = reply("250 2.0.0 OK")
		case "NOOP":
			ok = reply("250 2.0.0 OK")
		case "QUIT":
			_ = reply("221 2.0.0 Bye")
			return
		default:
			ok = reply("502 5.5.2 Command not implemented")
		}
		if !ok {
			return
		}
	}
}

var errAuth = errors.New("mailtest: authentication failed")

// auth handles "AUTH PLAIN <initial-response>" and the two-step variant.
func (s *Server) auth(tp *textproto.Conn, arg string) (string, error) {
	mech, resp, _ := strings.Cut(arg, " ")
	if !strings.EqualFold(mech, "PLAIN") {
		return "", errAuth
	}
	if resp == "" {
		if err := tp.PrintfLine("334 "); err != nil {
			return "", err
		}
		line, err := tp.ReadLine()
		if err != nil {
			return "", err
		}
		resp = line
	}

	raw, err := base64.StdEncoding.DecodeString(resp)
	if err != nil {
		return "", errAuth
	}
	parts := strings.Split(string(raw), "\x00")
	if len(parts) != 3 {
		return "", errAuth
	}
	user, pass := parts[1], parts[2]
	if s.username != "" && (user != s.username || pass != s.password) {
		return "", errAuth
	}
	return user, nil
}

// address extracts the path from "FROM:<a@b> BODY=8BITMIME".
func address(arg string) string {
	start := strings.IndexByte(arg, '<')
	end := strings.IndexByte(arg, '>')
	if start < 0 || end < start {
		return ""
	}
	return arg[start+1 : end]
}

var (
	certOnce sync.Once
	certTLS  tls.Certificate
	certPool *x509.CertPool
)

// certificate borrows the self-signed certificate httptest uses for its TLS
// servers; it is valid for 127.0.0.1.
func certificate() (tls.Certificate, *x509.CertPool) {
	certOnce.Do(func() {
		ts := httptest.NewUnstartedServer(http.NotFoundHandler())
		ts.StartTLS()
		defer ts.Close()

		certTLS = ts.TLS.Certificates[0]
		certPool = x509.NewCertPool()
		certPool.AddCert(ts.Certificate())
	})
	return certTLS, certPool
}
