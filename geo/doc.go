// Package geo provides the stateless math used to move a vehicle marker along
// a path: compass bearings, linear interpolation, easing and angle helpers.
//
// All angles are in degrees, clockwise from north.
package geo
