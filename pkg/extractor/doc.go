// Package extractor resolves a direct media URL for a public reel post
// without an official API.
//
// The upstream exposes several undocumented surfaces (a GraphQL-style
// endpoint, a private REST endpoint, a mobile embed page and the public
// post page), any of which may stop answering at the platform's whim. Each
// surface is wrapped as an independent Strategy; the Orchestrator walks
// them in fixed priority order with human-like pacing, on a fresh rate
// limited identity per pass, and the Resolver retries whole passes with
// escalating backoff. The first strategy to produce a URL wins; every
// strategy failure is absorbed so one uncooperative surface never sinks the
// cascade.
package extractor
