/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package hiprtc is a thin binding to hiprtc, the HIP runtime compiler: it compiles HIP C++ source code at
// runtime into code objects that can be loaded with hip.LoadModule.
//
// The low level API mirrors the native one: CreateProgram, Program.AddNameExpression, Program.Compile,
// Program.Log, Program.Code, Program.LoweredName and Program.Destroy. For most uses the pipeline builder
// is simpler:
//
//	compiled, err := hiprtc.NewCompilation(source).
//		WithName("saxpy.hip").
//		WithArch(arch).
//		Done()
//	if err != nil { ... } // Compilation errors include the compiler log.
//	module, err := hip.LoadModule(compiled.Code)
//
// Non-success results are returned as *Error, which unwraps to its Result. Results live in their own code
// space, separate from hip.Status.
package hiprtc
