// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (C) 2021-present the bgprouter authors

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/message"
	"github.com/oranjuce/BGP-Router/internal/neighbor"
	"github.com/oranjuce/BGP-Router/internal/router"
	"github.com/oranjuce/BGP-Router/internal/transport"
	"github.com/oranjuce/BGP-Router/internal/wire"
)

// errSendFailed marks a handleDatagram error as coming from the
// outbound transport leg rather than from decoding the inbound
// datagram: a transport send failure is surfaced to the host, not
// logged and dropped the way a malformed message is.
var errSendFailed = errors.New("transport send failed")

const version = "1.0.0"

func main() {
	verbose := flag.Bool("v", false, "Show debug-level log messages")
	human := flag.Bool("human", false, "Log at startup that human-readable dump debugging is enabled (no table is printed)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bgprouter version %s\n", version)
		return
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: bgprouter [options] <asn> <port-neighborIP-relation> [...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  bgprouter 1 7000-192.0.0.2-cust 7001-172.0.0.2-peer\n")
		os.Exit(1)
	}

	asn, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatalf("bgprouter: invalid ASN %q: %v", args[0], err)
	}

	neighbors, handles, err := buildNeighbors(args[1:])
	if err != nil {
		log.Fatalf("bgprouter: %v", err)
	}
	defer closeAll(handles)

	r := router.New(asn, neighbors, log)

	for _, n := range neighbors {
		hs := message.Handshake{}
		hs.SetAddresses(n.RouterAddress(), n.Address)
		env, err := message.Encode(hs)
		if err != nil {
			log.Fatalf("bgprouter: encode handshake: %v", err)
		}
		raw, err := wire.Encode(env)
		if err != nil {
			log.Fatalf("bgprouter: encode handshake: %v", err)
		}
		if err := handles[n.Address].Send(raw); err != nil {
			log.Fatalf("bgprouter: handshake to %s: %v", ipaddr.Unpack(n.Address), err)
		}
	}

	if *human {
		log.Info("bgprouter: human-readable dump debugging enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithField("asn", asn).WithField("neighbors", len(neighbors)).Info("bgprouter: starting")

	if err := run(ctx, r, neighbors, handles, log); err != nil {
		log.Fatalf("bgprouter: %v", err)
	}
}

func buildNeighbors(descriptors []string) ([]neighbor.Neighbor, map[ipaddr.Addr]*transport.UDPHandle, error) {
	neighbors := make([]neighbor.Neighbor, 0, len(descriptors))
	handles := make(map[ipaddr.Addr]*transport.UDPHandle, len(descriptors))

	for _, d := range descriptors {
		port, addr, relation, err := neighbor.ParseDescriptor(d)
		if err != nil {
			return nil, nil, fmt.Errorf("parse neighbor descriptor %q: %w", d, err)
		}

		h, err := transport.Dial(port)
		if err != nil {
			return nil, nil, fmt.Errorf("dial neighbor %q: %w", d, err)
		}

		n := neighbor.Neighbor{Port: port, Address: addr, Relation: relation, Transport: h}
		neighbors = append(neighbors, n)
		handles[addr] = h
	}

	return neighbors, handles, nil
}

func closeAll(handles map[ipaddr.Addr]*transport.UDPHandle) {
	for _, h := range handles {
		_ = h.Close()
	}
}

// run is the Dispatcher's top-level event pump: each
// iteration polls every neighbor handle in turn with a short bounded
// timeout, and fully processes any arrival — including every outbound
// message it causes — before moving on. There is no concurrency here;
// this is deliberate ("strictly single-threaded and cooperative").
func run(ctx context.Context, r *router.Router, neighbors []neighbor.Neighbor, handles map[ipaddr.Addr]*transport.UDPHandle, log *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("bgprouter: shutting down")
			return nil
		default:
		}

		for _, n := range neighbors {
			h := handles[n.Address]

			data, ok, err := h.Poll()
			if err != nil {
				return fmt.Errorf("poll neighbor %s: %w", ipaddr.Unpack(n.Address), err)
			}
			if !ok {
				continue
			}

			if err := handleDatagram(r, neighbors, data, handles, log); err != nil {
				if errors.Is(err, errSendFailed) {
					return err
				}
				log.WithError(err).WithField("neighbor", ipaddr.Unpack(n.Address)).Warn("bgprouter: dropping malformed message")
			}
		}
	}
}

func handleDatagram(r *router.Router, neighbors []neighbor.Neighbor, data []byte, handles map[ipaddr.Addr]*transport.UDPHandle, log *logrus.Logger) error {
	env, err := wire.Decode(data)
	if err != nil {
		return err
	}

	m, err := message.Decode(env)
	if err != nil {
		return err
	}

	for _, out := range r.HandleMessage(m) {
		outEnv, err := message.Encode(out)
		if err != nil {
			log.WithError(err).Warn("bgprouter: failed to encode outbound message")
			continue
		}

		raw, err := wire.Encode(outEnv)
		if err != nil {
			log.WithError(err).Warn("bgprouter: failed to encode outbound envelope")
			continue
		}

		h, addr, ok := resolveHandle(neighbors, handles, out)
		if !ok {
			log.WithField("dst", ipaddr.Unpack(out.Destination())).Warn("bgprouter: no transport for outbound destination")
			continue
		}

		if err := h.Send(raw); err != nil {
			return fmt.Errorf("%w: send to %s: %w", errSendFailed, ipaddr.Unpack(addr), err)
		}
	}

	return nil
}

// resolveHandle picks the neighbor transport an outbound message must
// go out on. Every message type but Data addresses its envelope Dst to
// the neighbor's own configured address, so an exact match against
// handles suffices. A forwarded Data message keeps Dst as the opaque
// final destination (it is never the neighbor's own address), so it is
// resolved instead by matching its Src — the router's own address on
// the chosen next-hop neighbor's link, stamped by internal/router — against
// each neighbor's subnet.
func resolveHandle(neighbors []neighbor.Neighbor, handles map[ipaddr.Addr]*transport.UDPHandle, out message.Message) (*transport.UDPHandle, ipaddr.Addr, bool) {
	if h, ok := handles[out.Destination()]; ok {
		return h, out.Destination(), true
	}

	if _, ok := out.(message.Data); !ok {
		return nil, 0, false
	}

	for _, n := range neighbors {
		if out.Source()&^0xff == n.Address&^0xff {
			h, ok := handles[n.Address]
			return h, n.Address, ok
		}
	}
	return nil, 0, false
}
