// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/offroad/server"
	"github.com/SoftbearStudios/offroad/server/cloud"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
)

func main() {
	var (
		agents         int
		configFile     string
		offline        bool
		origin         string
		port           int
		maxConnections int
	)

	flag.IntVar(&agents, "agents", 8, "minimum number of AI agents driving")
	flag.StringVar(&configFile, "config", "", "terrain config json, empty for defaults")
	flag.BoolVar(&offline, "offline", false, "don't connect to the cloud")
	flag.StringVar(&origin, "origin", "", "websocket origin host, empty for any")
	flag.IntVar(&port, "port", 8192, "http service port")
	flag.IntVar(&maxConnections, "max-connections", 256, "maximum number of inbound TCP connections")
	flag.Parse()

	if agents < 0 {
		log.Fatal("invalid argument agents: ", agents)
	}

	config := terrain.DefaultConfig()
	if configFile != "" {
		var err error
		if config, err = terrain.LoadConfig(configFile); err != nil {
			log.Fatal(err)
		}
	}

	var c *cloud.Cloud
	if !offline {
		var err error
		if c, err = cloud.New(); err != nil {
			// Cloud is not required for server to function, just log an error
			log.Printf("Cloud error: %v\n", err)
			c = nil
		}
	}

	hub, err := server.NewHub(server.HubOptions{
		Config:    config,
		Cloud:     c,
		MinAgents: agents,
		Origin:    origin,
	})
	if err != nil {
		log.Fatal(err)
	}

	go hub.Run()

	if port < 0 {
		log.Println("terrain simulation started")
		// Block forever
		<-make(chan struct{})
	}

	log.Printf("terrain server started on http://localhost:%d\n", port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)

	l, err := net.Listen("tcp", fmt.Sprint(":", port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, maxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
