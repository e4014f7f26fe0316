// Package codegen provides the building blocks for generated build files.
//
// # Overview
//
// Generated descriptors are assembled line by line with a Builder rather than from
// text templates, so the output is byte-deterministic and easy to assert on:
//
//	b := codegen.NewBuilder("android/capacitor.settings.gradle")
//	b.Comment(`DO NOT EDIT THIS FILE! IT IS GENERATED EACH TIME "capsync update" IS RUN`)
//	b.Blank()
//	b.Line("include ':%s'", id)
//	file := b.File()
//
// Build-system specific generators live in subpackages (pkg/codegen/gradle).
//
// # Output Rules
//
// Lines are joined with "\n" and a file always ends with a single newline. No
// timestamps or environment dependent values are ever written.
package codegen
