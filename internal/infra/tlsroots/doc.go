// Package tlsroots builds the trust store for outbound HTTPS.
//
// Cover images live on the vendor's CDN, or on a test server with a
// private CA. A Pool starts from the system roots and adds PEM bundles;
// HTTPClient turns it into a client for cover downloads.
package tlsroots
