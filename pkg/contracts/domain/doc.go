// Package domain defines the contract types shared between the dataset
// normalizer, the analytics services and the HTTP transport layer.
package domain
