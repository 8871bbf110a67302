// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

type DynamoDBDatabase struct {
	svc          *dynamodb.DynamoDB
	db           *dynamo.DB
	runsTable    dynamo.Table
	serversTable dynamo.Table
}

func NewDynamoDBDatabase(session *session.Session, stage string) (*DynamoDBDatabase, error) {
	ddb := &DynamoDBDatabase{svc: dynamodb.New(session)}
	ddb.db = dynamo.NewFromIface(ddb.svc)
	ddb.runsTable = ddb.db.Table("offroad-" + stage + "-runs")
	ddb.serversTable = ddb.db.Table("offroad-" + stage + "-servers")
	return ddb, nil
}

// PutRun stores run unless a run with the same ID exists.
func (ddb *DynamoDBDatabase) PutRun(run Run) error {
	err := ddb.runsTable.Put(run).If("attribute_not_exists(id)").Run()
	if err != nil {
		if _, ok := err.(*dynamodb.ConditionalCheckFailedException); ok {
			return nil
		}
	}
	return err
}

func (ddb *DynamoDBDatabase) ReadRuns() (runs []Run, err error) {
	err = ddb.runsTable.Scan().All(&runs)
	return
}

func (ddb *DynamoDBDatabase) ReadRunsBySeed(seed int64) (runs []Run, err error) {
	query := ddb.runsTable.Scan().Filter("$ = ?", "seed", seed).Iter()

	for {
		var run Run
		ok := query.Next(&run)
		if !ok {
			err = query.Err()
			return
		}
		runs = append(runs, run)
	}
}

func (ddb *DynamoDBDatabase) UpdateServer(server Server) error {
	return ddb.serversTable.Put(server).Run()
}

func (ddb *DynamoDBDatabase) ReadServers() (servers []Server, err error) {
	query := ddb.serversTable.Scan().Iter()

	for {
		var server Server
		ok := query.Next(&server)
		if !ok {
			err = query.Err()
			return
		}
		servers = append(servers, server)
	}
}
