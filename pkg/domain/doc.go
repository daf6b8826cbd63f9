/*
Package domain contains the core domain models of the quest engine.

It defines the immutable quest document (screens, buttons, localized text) and the
values the engine hands back to the host. This package is kept pure and free of
external dependencies like I/O, scripting or persistence.

# Key Entities

  - QuestDocument: The screen graph loaded once at startup.
  - Screen: A node in the graph (text, choices, optional script and sandbox reset).
  - Button: A choice leading to a target screen or to one of several random exits.
  - TextSpec: Either a literal string or a per-language mapping with prefix/suffix.
  - Reply: What the host should deliver to the user after an event.
*/
package domain
