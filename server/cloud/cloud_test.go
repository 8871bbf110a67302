// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"github.com/SoftbearStudios/offroad/server/cloud/db"
	"net"
	"testing"
	"time"
)

type memoryDatabase struct {
	runs    []db.Run
	servers []db.Server
}

func (m *memoryDatabase) PutRun(run db.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryDatabase) ReadRuns() ([]db.Run, error) {
	return m.runs, nil
}

func (m *memoryDatabase) ReadRunsBySeed(seed int64) (runs []db.Run, err error) {
	for _, run := range m.runs {
		if run.Seed == seed {
			runs = append(runs, run)
		}
	}
	return
}

func (m *memoryDatabase) UpdateServer(server db.Server) error {
	m.servers = append(m.servers, server)
	return nil
}

func (m *memoryDatabase) ReadServers() ([]db.Server, error) {
	return m.servers, nil
}

type memoryFilesystem map[string][]byte

func (m memoryFilesystem) UploadStaticFile(filename string, _ int, data []byte) error {
	m[filename] = data
	return nil
}

func TestCloud_Offline(t *testing.T) {
	var cloud *Cloud
	if s := cloud.String(); s != "[offline]" {
		t.Errorf("expected [offline] got %s", s)
	}
	if cloud.Region() != "" {
		t.Errorf("expected no region")
	}
	if err := cloud.RecordRun(db.NewRun("", 1)); err != nil {
		t.Error(err)
	}
	if err := cloud.UpdateServer(db.Server{Clients: 1}); err != nil {
		t.Error(err)
	}
	if err := cloud.UploadTerrainSnapshot([]byte{1}); err != nil {
		t.Error(err)
	}
}

func TestCloud_Records(t *testing.T) {
	database := &memoryDatabase{}
	filesystem := memoryFilesystem{}
	cloud := &Cloud{region: "us-east-1", ip: net.IPv4(10, 0, 0, 1), database: database, fs: filesystem}

	run := db.NewRun(cloud.Region(), 56)
	if err := cloud.RecordRun(run); err != nil {
		t.Fatal(err)
	}
	if err := cloud.RecordRun(db.NewRun(cloud.Region(), 57)); err != nil {
		t.Fatal(err)
	}

	runs, _ := database.ReadRunsBySeed(56)
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("expected the seed 56 run got %v", runs)
	}
	if expected := time.Unix(run.Created, 0).Add(runTTL).Unix(); runs[0].TTL != expected {
		t.Errorf("expected ttl %d got %d", expected, runs[0].TTL)
	}
	if db.NewRun("", 56).ID == run.ID {
		t.Errorf("expected unique run IDs")
	}

	if err := cloud.UpdateServer(db.Server{Clients: 3, Agents: 8}); err != nil {
		t.Fatal(err)
	}
	server := database.servers[0]
	if server.Region != "us-east-1" || !server.IP.Equal(cloud.ip) || server.Clients != 3 || server.TTL <= time.Now().Unix() {
		t.Errorf("expected region, ip and ttl to be filled in got %+v", server)
	}

	if err := cloud.UploadTerrainSnapshot([]byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	if len(filesystem[snapshotFilename]) != 2 {
		t.Errorf("expected the snapshot to be uploaded")
	}
}

func TestParseUserData(t *testing.T) {
	data, err := parseUserData("REGION=\"us-west-2\"\nSTAGE=prod\r\nIGNORED\nDOMAIN=example.com\nROUTE53_ZONEID=Z123\n")
	if err != nil {
		t.Fatal(err)
	}
	if data.Region != "us-west-2" || data.Stage != "prod" || data.Domain != "example.com" || data.Route53ZoneID != "Z123" {
		t.Errorf("unexpected user data %+v", data)
	}

	if _, err = parseUserData("REGION=us-west-2\nSTAGE=prod"); err != nil {
		t.Errorf("expected DNS to be optional got %v", err)
	}

	for _, userData := range []string{
		"STAGE=prod",
		"REGION=us-west-2",
		"REGION=us-west-2\nSTAGE=prod\nDOMAIN=example.com",
	} {
		if _, err = parseUserData(userData); err == nil {
			t.Errorf("expected %q to be rejected", userData)
		}
	}
}
