// Package cache keeps synthesized speech so that re-reading an article does
// not run the synthesizer again. It has an in-memory LRU cache (L1) in front
// of a zstd-compressed disk cache (L2) that persists across sessions.
package cache
