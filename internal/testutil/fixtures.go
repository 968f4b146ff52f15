package testutil

import (
	"testing"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/lookup"
)

// CatalogYAML is a small device catalog covering every type profile family.
const CatalogYAML = `
default_source: agg
sources:
  - name: agg
    default_fields: [adapters, hostname, last_seen, os.type]
    fields:
      - {name: all, type: string, is_all: true}
      - {name: hostname, title: Host Name, type: string}
      - {name: os.type, title: OS Type, type: string}
      - {name: os.distribution, type: string, format: os-distribution}
      - {name: power_state, type: string, enum: ["On", "Off", "Suspended"]}
      - {name: last_seen, type: string, format: date-time}
      - {name: last_boot, type: string, format: date}
      - {name: avatar, type: string, format: image}
      - {name: os.version, type: string, format: version}
      - {name: subnet, type: string, format: subnet}
      - {name: public_ip, type: string, format: ip}
      - {name: is_managed, type: bool}
      - {name: adapter_count, type: integer, enum: ["1", "2", "3"]}
      - {name: port_count, type: integer}
      - {name: cvss, type: number}
      - {name: notes, type: string, format: dynamic_field}
      - {name: saved_query, type: string, format: sq}
      - {name: data_scope, type: string, format: data_scope}
      - {name: connection_label, type: string, format: connection_label}
      - {name: expirable_tags.name, type: string, format: expirable-tag}
      - {name: blob, type: object}
      - name: adapters
        type: array
        format: discrete
        items: {type: string, format: logo}
      - name: labels
        type: array
        items: {type: string, format: tag}
      - name: last_used_users
        type: array
        items: {type: string}
      - name: network_interfaces.ips
        type: array
        format: ip
        items: {type: string, format: ip}
      - name: network_interfaces.subnets
        type: array
        format: subnet
        items: {type: string, format: subnet}
      - name: open_ports
        type: array
        items: {type: integer}
      - name: usb_classes
        type: array
        items: {type: string, enum: [storage, hid, audio]}
      - name: installed_software
        type: array
        is_complex: true
        items: {type: array}
        sub_fields:
          - {name: name, type: string}
          - {name: version, type: string, format: version}
          - {name: vendor, type: string}
      - name: cpus
        type: array
        format: table
        is_complex: true
        items: {type: array}
        sub_fields:
          - {name: cores, type: integer}
          - {name: name, type: string}
  - name: aws
    default_fields: ["aws:aws_device_type"]
    fields:
      - {name: aws_device_type, type: string, enum: [EC2, ECS, ELB]}
      - {name: hostname, name_qual: adapters_data.aws_adapter.hostname, type: string}
`

// Catalog returns the fixture catalog, failing the test on error.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.ParseYAML([]byte(CatalogYAML))
	if err != nil {
		t.Fatalf("fixture catalog: %v", err)
	}
	return c
}

// Lookups returns fixed candidate lists matching the fixture catalog.
func Lookups() lookup.Static {
	return lookup.Static{
		TagList: []string{"Production", "Staging", "Needs Review"},
		DataSourceList: []lookup.Choice{
			{Name: "aws", Raw: "aws_adapter"},
			{Name: "tanium asset", Raw: "tanium_asset_adapter"},
		},
		ConnectionLabelList: []string{"corp-aws", "lab"},
	}
}
