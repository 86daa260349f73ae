/*
Package ddns keeps Cloudflare "A" records pointed at the host's current public IPv4 address.

Usage will always start with [ddns.New],
which takes the list of domains to manage and returns a [Client].
New requires a [Provider] for the DNS zone, usually registered with [UsingCloudflare].
Additional client configuration options are listed in the docs for New.

A Client runs in cycles.
Each cycle resolves the public IP once and then reconciles every domain in order:
a record that already holds the IP is left alone,
a record with a different IP is updated in place,
and a missing record is created.
[Client.RunDDNS] runs a single cycle and [Client.Run] repeats cycles until its context is cancelled.
*/
package ddns
