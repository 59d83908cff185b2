// Package groupchat implements round-robin group conversations with
// human-in-the-loop interjection.
//
// A Coordinator rotates turns over a fixed Roster of participants. After
// every agent message a TurnPolicy decides whether the human should speak
// next; the built-in policy (NewUserInterjectionPolicy) pauses after the
// entry participant's greeting and after every specialist answer, keyed
// purely on who spoke last. Supplying a different TurnPolicy changes the
// interjection behavior without touching the scheduler.
//
// The conversation terminates when a round cap is reached, when the human
// input source is exhausted (io.EOF), or when a participant's model backend
// fails. The first two are graceful: the last message produced stands as the
// final result.
package groupchat
