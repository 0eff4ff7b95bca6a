package mcpserver

// LayoutContract describes the directory layout and front matter the
// loader accepts. LLM consumers should follow it when adding modules.
const LayoutContract = `# Coursebook Corpus Layout

A corpus is a directory tree. Every non-hidden top-level directory is a
module, except the ignored ones (assets, images, static, node_modules by
default).

## Tree

` + "```" + `
README.md                 # OPTIONAL – landing page text
checklist.md              # OPTIONAL – learner progress
resources.md              # OPTIONAL – curated links
01-introduction/
  theory.md               # REQUIRED
  examples/hello.go       # code example
  examples/hello.out      # OPTIONAL – expected output of hello.go
  exercises/greet.md      # exercise prompt
  solutions/greet.go      # worked answer
02-basics/
  ...
` + "```" + `

## theory.md

` + "```" + `markdown
---
title: Introduction        # OPTIONAL – defaults to the first H1, then the module id
level: beginner            # OPTIONAL – beginner | intermediate | advanced (default beginner)
ordinal: 1                 # OPTIONAL – overrides the numeric directory prefix
id: introduction           # OPTIONAL – defaults to the slug of the directory name
tags: [setup]              # OPTIONAL
---

# Introduction

Body text in standard Markdown.
` + "```" + `

## Rules

1. **The ordinal must be known.** Either the directory starts with a number
   (` + "`" + `03-concurrency` + "`" + `) or front matter sets ` + "`" + `ordinal` + "`" + `. It must be a positive integer.
2. **Ordinals are unique.** When two modules claim the same ordinal the
   first directory in name order keeps it; the other is rejected with a
   DuplicateOrdinal warning.
3. **Ids are unique** and consist of lowercase letters, digits and dashes.
4. **Examples** are source files in ` + "`" + `examples/` + "`" + `. A sibling file with the same
   stem and ` + "`" + `.out` + "`" + ` extension holds the expected output. A Markdown example may
   instead carry a fenced code block followed by an ` + "`" + "```output" + "`" + ` block.
5. **Exercises** are Markdown files in ` + "`" + `exercises/` + "`" + `. The title comes from front
   matter or the first H1. ` + "`" + `solution: name.go` + "`" + ` pairs an exercise with a file in
   ` + "`" + `solutions/` + "`" + `; without it, a solution with the same stem is used. An exercise
   whose named solution does not exist produces a MissingSolution warning.
6. **checklist.md** items are ` + "`" + `- [ ] text` + "`" + ` or ` + "`" + `- [x] text` + "`" + `. Headings group
   items into sections.
7. **resources.md** items are ` + "`" + `[Title](url)` + "`" + `, ` + "`" + `<url>` + "`" + ` or plain text. Headings name
   categories.

## Validation

Run the validate_corpus tool after editing. Structural defects
(MalformedModule, DuplicateOrdinal) drop the module; the other kinds are
warnings and leave it loaded.
`
