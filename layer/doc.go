// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package layer implements bidirectional protocol stacks built from
// nodes chained in a line (e.g. transport, framing, application).
//
// Each Node has at most one upper and one lower neighbour. Messages from
// above enter through FromUpper and by default continue downwards;
// messages from below enter through FromLower and by default continue
// upwards. A Handler changes that, e.g. decoding bytes from below into
// structured messages sent up, and encoding structured messages from
// above into bytes sent down.
//
// Every Node picks, per direction, an ownership Policy as a type
// parameter: Exclusive closes the neighbour when the node is closed,
// Borrowed leaves it alone. A typical stack has every node owning its
// lower neighbour and borrowing the upper one, so closing the top node
// closes the whole stack.
//
// Sending to a missing neighbour is a programming error and panics.
package layer
