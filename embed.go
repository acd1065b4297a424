package shigure

import "embed"

// EmbeddedAssets holds scripts served under /public/: post.js binds image
// zoom on post pages.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
