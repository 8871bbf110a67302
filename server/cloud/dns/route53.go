// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package dns

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
	"net"
)

const recordTTL = 60

type Route53DNS struct {
	svc    *route53.Route53
	domain string
	zoneID string
}

func NewRoute53DNS(session *session.Session, domain string, zoneID string) (*Route53DNS, error) {
	return &Route53DNS{
		svc:    route53.New(session),
		domain: domain,
		zoneID: zoneID,
	}, nil
}

// HostName is the name of region's server under domain.
func HostName(region, domain string) string {
	return "terrain-" + region + "." + domain
}

func (route53DNS *Route53DNS) UpdateRoute(region string, address net.IP) error {
	request := &route53.ChangeResourceRecordSetsInput{
		ChangeBatch: &route53.ChangeBatch{
			Changes: []*route53.Change{
				{
					Action: aws.String(route53.ChangeActionUpsert),
					ResourceRecordSet: &route53.ResourceRecordSet{
						Name: aws.String(HostName(region, route53DNS.domain)),
						Type: aws.String(route53.RRTypeA),
						ResourceRecords: []*route53.ResourceRecord{
							{
								Value: aws.String(address.String()),
							},
						},
						TTL: aws.Int64(recordTTL),
					},
				},
			},
		},
		HostedZoneId: aws.String(route53DNS.zoneID),
	}
	_, err := route53DNS.svc.ChangeResourceRecordSets(request)
	return err
}
