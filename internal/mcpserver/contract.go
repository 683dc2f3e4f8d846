package mcpserver

// TermFormatContract describes the document format every glossary term must
// follow to be published.
const TermFormatContract = `# Lexicon Term Format Contract

Every term is one Markdown file with a YAML front-matter block.

## Structure

` + "```" + `markdown
---
title: Closure                     # REQUIRED – display title
slug: closure                      # REQUIRED – URL segment, unique per language
date: 2021-02-01                   # OPTIONAL – publish date, drives listing order
category: computer science         # OPTIONAL – computer science | language | tools
published: true                    # OPTIONAL – false hides the term everywhere
description: One-line summary      # OPTIONAL – used for previews
---

Body text in Markdown.
` + "```" + `

## Rules

1. **Front-matter is mandatory** and must open the file with ` + "`---`" + `.
2. **` + "`title`" + ` and ` + "`slug`" + ` are required.** A slug may not contain
   whitespace, ` + "`/`" + `, ` + "`?`" + ` or ` + "`#`" + `.
3. **Dates** use ` + "`YYYY-MM-DD`" + `, RFC 3339, or ` + "`January 2, 2006`" + `.
   Terms without a date are listed last and carry no feed publish date.
4. **Slugs are unique per language.** When two files share a slug, the file
   whose name sorts first wins and the other is skipped.
5. **Translations** live in a sub-directory named after the language code
   (` + "`es/closure.md`" + `) and reuse the slug of the original term.
6. **Raw HTML is dropped.** Use Markdown only.

## Code blocks

The info string is ` + "`<language> [raw] [highlight=<lines>]`" + `:

- Go, JSON, YAML and JavaScript/TypeScript blocks are reformatted unless
  ` + "`raw`" + ` is given. A block that fails to format is shown as written.
- ` + "`highlight=1,3-4`" + ` emphasises lines 1, 3 and 4 of the block.

## Task lists

` + "`- [ ] item`" + ` and ` + "`- [x] item`" + ` render as read-only checkboxes.
`
