// Package unlock evaluates declarative unlock rules.
//
// A rule such as "song,MySong;arcadepoints,100;code,1001" gates one reward
// (a song, a difficulty chart of a song, a course or a modifier) behind
// progress thresholds. The Registry parses every rule listed by the theme,
// resolves rule targets against the song/course catalog, and answers
// locked/unlocked queries from the machine profile's scores and grants.
package unlock
