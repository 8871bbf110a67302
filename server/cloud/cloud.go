// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud records generation runs and server status in DynamoDB and
// uploads terrain snapshots to S3.
package cloud

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/cloud/db"
	"github.com/SoftbearStudios/offroad/server/cloud/dns"
	"github.com/SoftbearStudios/offroad/server/cloud/fs"
	"net"
	"strings"
	"time"
)

const (
	UpdatePeriod = 30 * time.Second

	// runTTL is how long generation runs are kept.
	runTTL = 30 * 24 * time.Hour

	snapshotFilename = "terrain.png"
)

// A nil cloud is valid to use with any methods (acts as a no-op)
// This just means server is in offline mode
type Cloud struct {
	region   string
	ip       net.IP
	database db.Database
	dns      dns.DNS // nil without a domain
	fs       fs.Filesystem
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	if cloud == nil {
		builder.WriteString("offline")
	} else {
		builder.WriteString(cloud.region)
		builder.WriteByte(' ')
		builder.WriteString(cloud.ip.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

// Returns nil cloud on error
func New() (*Cloud, error) {
	userData, err := loadUserData()
	if err != nil {
		return nil, fmt.Errorf("user data: %w", err)
	}

	cloud := &Cloud{region: userData.Region}

	cloud.ip, err = getPublicIP()
	if err != nil {
		return nil, err
	}
	session, err := getAWSSession(cloud.region)
	if err != nil {
		return nil, err
	}

	cloud.database, err = db.NewDynamoDBDatabase(session, userData.Stage)
	if err != nil {
		return nil, err
	}
	cloud.fs, err = fs.NewS3Filesystem(session, userData.Stage)
	if err != nil {
		return nil, err
	}

	if userData.Domain != "" {
		route53, err := dns.NewRoute53DNS(session, userData.Domain, userData.Route53ZoneID)
		if err != nil {
			return nil, err
		}
		if err = route53.UpdateRoute(cloud.region, cloud.ip); err != nil {
			return nil, fmt.Errorf("dns: %w", err)
		}
		cloud.dns = route53
	}

	if err = cloud.UpdateServer(db.Server{}); err != nil {
		return nil, err
	}
	return cloud, nil
}

// Region is the server's region, empty if offline.
func (cloud *Cloud) Region() string {
	if cloud == nil {
		return ""
	}
	return cloud.region
}

// UpdateServer publishes server's counters. Region, IP and TTL are filled in.
// Call at least every UpdatePeriod.
func (cloud *Cloud) UpdateServer(server db.Server) error {
	if cloud == nil {
		return nil
	}
	server.Region = cloud.region
	server.IP = cloud.ip
	server.TTL = time.Now().Add(UpdatePeriod + 5*time.Second).Unix()
	return cloud.database.UpdateServer(server)
}

// RecordRun stores a generation run.
func (cloud *Cloud) RecordRun(run db.Run) error {
	if cloud == nil {
		return nil
	}
	if run.TTL == 0 {
		run.TTL = time.Unix(run.Created, 0).Add(runTTL).Unix()
	}
	return cloud.database.PutRun(run)
}

// UploadTerrainSnapshot takes an encoded PNG.
func (cloud *Cloud) UploadTerrainSnapshot(data []byte) error {
	if cloud == nil {
		return nil
	}
	return cloud.fs.UploadStaticFile(snapshotFilename, 60, data)
}
