// Command ping_helper sends one ICMP echo request and reports the result.
//
// It is the only privileged piece of paraping: install it with cap_net_raw
// (or setuid) so the monitor itself can stay unprivileged. The CLI contract
// is fixed:
//
//	ping_helper <host> <timeout_ms> [icmp_seq]
//
// On success it prints "rtt_ms=<float> ttl=<int>" and exits 0. Exit 7 means
// the reply timed out (stdout stays empty; not an error). Other exits:
// 1 usage, 2 argument validation, 3 resolution, 4 socket/permission,
// 5 send, 6 deadline, 8 receive.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Exit codes of the helper contract.
const (
	exitUsage      = 1
	exitValidation = 2
	exitResolve    = 3
	exitSocket     = 4
	exitSend       = 5
	exitDeadline   = 6
	exitTimeout    = 7
	exitReceive    = 8
)

const (
	minTimeoutMS = 1
	maxTimeoutMS = 60000
	maxMTU       = 1500
)

func fatalf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func main() {
	args := os.Args[1:]
	if len(args) < 2 || len(args) > 3 {
		fatalf(exitUsage, "Usage: %s <host> <timeout_ms> [icmp_seq]", os.Args[0])
	}
	host := args[0]

	timeoutMS, err := strconv.Atoi(args[1])
	if err != nil || timeoutMS < minTimeoutMS || timeoutMS > maxTimeoutMS {
		fatalf(exitValidation, "timeout_ms must be an integer in [%d, %d]", minTimeoutMS, maxTimeoutMS)
	}
	seq := 1
	if len(args) == 3 {
		seq, err = strconv.Atoi(args[2])
		if err != nil || seq < 0 || seq > 65535 {
			fatalf(exitValidation, "icmp_seq must be an integer in [0, 65535]")
		}
	}

	dst, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		fatalf(exitResolve, "cannot resolve %q: %v", host, err)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		fatalf(exitSocket, "cannot open ICMP socket (missing cap_net_raw?): %v", err)
	}
	defer conn.Close()

	pc := conn.IPv4PacketConn()
	// The reply's TTL arrives as a control message.
	if err := pc.SetControlMessage(ipv4.FlagTTL, true); err != nil {
		fatalf(exitSocket, "cannot enable TTL control messages: %v", err)
	}

	id := os.Getpid() & 0xffff
	wm := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("paraping"),
		},
	}
	wb, err := wm.Marshal(nil)
	if err != nil {
		fatalf(exitSend, "marshal error: %v", err)
	}

	start := time.Now()
	deadline := start.Add(time.Duration(timeoutMS) * time.Millisecond)
	if _, err := conn.WriteTo(wb, dst); err != nil {
		fatalf(exitSend, "send error: %v", err)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		fatalf(exitDeadline, "cannot set read deadline: %v", err)
	}

	rb := make([]byte, maxMTU)
	for {
		n, cm, _, err := pc.ReadFrom(rb)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				os.Exit(exitTimeout)
			}
			fatalf(exitReceive, "receive error: %v", err)
		}
		rm, err := icmp.ParseMessage(1, rb[:n])
		if err != nil {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		// Other ping processes share the raw socket's traffic.
		if echo.ID != id || echo.Seq != seq {
			continue
		}
		rtt := time.Since(start)
		ttl := 0
		if cm != nil {
			ttl = cm.TTL
		}
		fmt.Printf("rtt_ms=%.3f ttl=%d\n", float64(rtt)/float64(time.Millisecond), ttl)
		return
	}
}
